package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/promoter/internal/core/domain"
	"github.com/artpar/promoter/internal/core/validation"
	"github.com/artpar/promoter/internal/shell/gitinfo"
)

type shipOpts struct {
	*rootOpts
	dir         string
	application string
	repository  string
	configName  string
	yes         bool
}

func newShip(parent *rootOpts) *shipOpts {
	return &shipOpts{rootOpts: parent}
}

func (opts *shipOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ship",
		Short: "Deploy the checked out commit after confirmation.",
		Long: `Ship deploys HEAD of a local checkout. It must run from the directory holding
appspec.yml. Application and repository default to the origin remote and are
asked for interactively; the deployment starts only after typing "yes".`,
		Example: makeExample(
			"promoter ship",
			"promoter ship --application Hello-World --repository octocat/hello-world --yes",
		),
		RunE: opts.RunE,
	}
	cmd.Flags().StringVar(&opts.dir, "dir", ".", "git working directory")
	cmd.Flags().StringVar(&opts.application, "application", "", "CodeDeploy application name; prompted for when empty")
	cmd.Flags().StringVar(&opts.repository, "repository", "", "full repository name; prompted for when empty")
	cmd.Flags().StringVar(&opts.configName, "config-name", "", "branch_config entry to match instead of the branch")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (opts *shipOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errWantedNoArgs
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(opts.cfg.Deploy.AppSpecPath); err != nil {
		return &CommandError{
			Op:       "ship",
			Err:      fmt.Errorf("%s does not exist, make sure you are in the project's top level directory", opts.cfg.Deploy.AppSpecPath),
			ExitCode: ExitConfigError,
		}
	}

	info, err := gitinfo.Discover(cmd.Context(), opts.gitRunner, opts.dir)
	if err != nil {
		return &CommandError{Op: "read git information", Err: err, ExitCode: ExitConfigError}
	}

	fmt.Fprintln(out, "OK, let's ship this...")
	fmt.Fprintf(out, "On branch %s, commit %s\n", info.Branch, info.CommitID)

	p := newPrompter(opts.stdin, out)

	application := opts.application
	if application == "" {
		if application, err = p.ask("CodeDeploy application name", info.Repository.Name, validation.ValidateApplicationName); err != nil {
			return err
		}
	} else if _, msg := validation.ValidateApplicationName(application); msg != "" {
		return &CommandError{Op: "ship", Err: errors.New(msg), ExitCode: ExitConfigError}
	}

	repository := opts.repository
	if repository == "" {
		if repository, err = p.ask(`Full repository name, like "octocat/example"`, info.Repository.FullName(), validation.ValidateRepositoryName); err != nil {
			return err
		}
	} else if _, msg := validation.ValidateRepositoryName(repository); msg != "" {
		return &CommandError{Op: "ship", Err: errors.New(msg), ExitCode: ExitConfigError}
	}

	if !opts.yes {
		if _, err := p.ask(`Type "yes" to create deployment`, "", validation.ValidateConfirmation); err != nil {
			return err
		}
	}

	o, release, err := opts.orchestrator(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	result, err := o.Deploy(cmd.Context(), domain.Trigger{
		ApplicationName:    application,
		FullRepositoryName: repository,
		BranchName:         info.Branch,
		ConfigLookupName:   opts.configName,
		CommitID:           info.CommitID,
	})
	if err != nil {
		return err
	}
	printResult(out, result)
	return nil
}

// =============================================================================
// Prompts
// =============================================================================

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask reads a line until validate accepts it. An empty line takes def.
// End of input aborts.
func (p *prompter) ask(label, def string, validate func(string) (string, string)) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(p.out, "%s (%s): ", label, def)
		} else {
			fmt.Fprintf(p.out, "%s: ", label)
		}

		if !p.in.Scan() {
			fmt.Fprintln(p.out)
			if err := p.in.Err(); err != nil {
				return "", fmt.Errorf("%w: %v", errAborted, err)
			}
			return "", errAborted
		}

		answer := strings.TrimSpace(p.in.Text())
		if answer == "" {
			answer = def
		}
		if _, msg := validate(answer); msg != "" {
			fmt.Fprintf(p.out, "%s\n", msg)
			continue
		}
		return answer, nil
	}
}
