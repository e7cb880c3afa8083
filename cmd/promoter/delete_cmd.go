package main

import (
	"github.com/spf13/cobra"
)

type deleteGroupOpts struct {
	*rootOpts
	trigger triggerFlags
}

func newDeleteGroup(parent *rootOpts) *deleteGroupOpts {
	return &deleteGroupOpts{rootOpts: parent}
}

func (opts *deleteGroupOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-group",
		Short: "Delete the deployment group a branch resolves to.",
		Long: `Delete-group is meant for the pull_request "closed" event. A group that is
already gone is not an error.`,
		Example: makeExample(
			"promoter delete-group",
			"promoter delete-group --application Hello-World --branch feature/login --pr 17",
		),
		RunE: opts.RunE,
	}
	opts.trigger.register(cmd.Flags())
	return cmd
}

func (opts *deleteGroupOpts) RunE(cmd *cobra.Command, args []string) error {
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

	result, err := o.DeleteGroup(cmd.Context(), t)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}
