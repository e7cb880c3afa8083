package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

type versionOpts struct {
	*rootOpts
}

func newVersion(parent *rootOpts) *versionOpts {
	return &versionOpts{rootOpts: parent}
}

func (opts *versionOpts) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Output the version of promoter",
		RunE:  opts.RunE,
	}
}

func (opts *versionOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errWantedNoArgs
	}
	fmt.Fprintf(cmd.OutOrStdout(), "promoter %s (built %s, %s)\n", Version, BuildTime, runtime.Version())
	return nil
}
