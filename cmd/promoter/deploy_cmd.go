package main

import (
	"github.com/spf13/cobra"

	"github.com/artpar/promoter/internal/shell/outputs"
	"github.com/artpar/promoter/internal/shell/promotion"
)

type deployOpts struct {
	*rootOpts
	trigger triggerFlags
}

func newDeploy(parent *rootOpts) *deployOpts {
	return &deployOpts{rootOpts: parent}
}

func (opts *deployOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a commit to the deployment group its branch resolves to.",
		Long: `Deploy reads the triggering push or pull_request event from GITHUB_EVENT_PATH,
resolves the branch against appspec.yml, creates or updates the deployment group,
starts a deployment and waits for it to finish. Flags override event fields.`,
		Example: makeExample(
			"promoter deploy",
			"promoter deploy --application Hello-World --repository octocat/hello-world --branch main --commit 7fd1a60",
		),
		RunE: opts.RunE,
	}
	opts.trigger.register(cmd.Flags())
	return cmd
}

func (opts *deployOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errWantedNoArgs
	}

	t, err := opts.trigger.resolve(cmd, opts.getenv)
	if err != nil {
		return err
	}

	o, release, err := opts.orchestrator(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	result, err := o.Deploy(cmd.Context(), t)
	if outErr := opts.writeOutputs(result); outErr != nil {
		if err == nil {
			return outErr
		}
		opts.logger.Warn("failed to write step outputs", "error", outErr)
	}
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

// writeOutputs reports the group and deployment to the workflow. A group
// created before a failure is still reported.
func (opts *rootOpts) writeOutputs(result *promotion.Result) error {
	if result == nil || result.GroupName == "" {
		return nil
	}
	w := outputs.NewWriter(opts.getenv("GITHUB_OUTPUT"), opts.logger)
	pairs := [][2]string{
		{outputs.DeploymentGroupCreated, outputs.Flag(result.GroupCreated)},
		{outputs.DeploymentGroupName, result.GroupName},
	}
	if result.DeploymentID != "" {
		pairs = append(pairs, [2]string{outputs.DeploymentID, result.DeploymentID})
	}
	return w.SetAll(pairs...)
}
