package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/artpar/promoter/internal/core/domain"
	"github.com/artpar/promoter/internal/shell/trigger"
)

// triggerFlags override fields of the workflow trigger. Outside a workflow
// they are the only source.
type triggerFlags struct {
	application       string
	repository        string
	branch            string
	commit            string
	pullRequest       int
	configName        string
	runNumber         int64
	skipSequenceCheck bool
}

func (f *triggerFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.application, "application", "", "CodeDeploy application name; defaults to the repository name")
	flags.StringVar(&f.repository, "repository", "", `full repository name, like "octocat/example"`)
	flags.StringVar(&f.branch, "branch", "", "branch name")
	flags.StringVar(&f.commit, "commit", "", "commit to deploy")
	flags.IntVar(&f.pullRequest, "pr", 0, "pull request number")
	flags.StringVar(&f.configName, "config-name", "", "branch_config entry to match instead of the branch")
	flags.Int64Var(&f.runNumber, "run-number", 0, "workflow run number used by the sequencing check")
	flags.BoolVar(&f.skipSequenceCheck, "skip-sequence-check", false, "deploy even if a newer run already deployed")
}

// resolve reads the workflow event when there is one and applies the flags
// that were set explicitly.
func (f *triggerFlags) resolve(cmd *cobra.Command, getenv func(string) string) (domain.Trigger, error) {
	var t domain.Trigger
	if getenv("GITHUB_EVENT_PATH") != "" {
		var err error
		if t, err = trigger.FromEnvironment(getenv); err != nil {
			return domain.Trigger{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("application") {
		t.ApplicationName = f.application
	}
	if flags.Changed("repository") {
		t.FullRepositoryName = f.repository
	}
	if flags.Changed("branch") {
		t.BranchName = f.branch
	}
	if flags.Changed("commit") {
		t.CommitID = f.commit
	}
	if flags.Changed("pr") {
		n := f.pullRequest
		t.PullRequestNumber = &n
	}
	if flags.Changed("config-name") {
		t.ConfigLookupName = f.configName
	}
	if flags.Changed("run-number") {
		n := f.runNumber
		t.RunNumber = &n
	}
	if flags.Changed("skip-sequence-check") {
		t.SkipSequenceCheck = f.skipSequenceCheck
	}

	if t.ApplicationName == "" && t.FullRepositoryName != "" {
		if _, name, ok := strings.Cut(t.FullRepositoryName, "/"); ok {
			t.ApplicationName = name
		}
	}
	return t, nil
}
