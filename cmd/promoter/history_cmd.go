package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/artpar/promoter/internal/core/domain"
	"github.com/artpar/promoter/internal/shell/store"
)

type historyOpts struct {
	*rootOpts
	application string
	group       string
	limit       int
	offset      int
}

func newHistory(parent *rootOpts) *historyOpts {
	return &historyOpts{rootOpts: parent}
}

func (opts *historyOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show promotions recorded in the local journal.",
		Example: makeExample(
			"promoter history --journal ./promotions.db",
			"promoter history --group main --limit 5",
		),
		RunE: opts.RunE,
	}
	cmd.Flags().StringVar(&opts.application, "application", "", "only show this application")
	cmd.Flags().StringVarP(&opts.group, "group", "g", "", "only show this deployment group")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", store.DefaultListOptions().Limit, "maximum number of entries")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "entries to skip")
	return cmd
}

func (opts *historyOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errWantedNoArgs
	}
	if opts.cfg.Journal.DSN == "" {
		return &CommandError{
			Op:       "history",
			Err:      errors.New("no journal configured, set --journal or journal.dsn"),
			ExitCode: ExitConfigError,
		}
	}

	s, err := opts.openStore(opts.cfg.Journal.DSN)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.ListPromotions(cmd.Context(), store.ListOptions{
		Limit:           opts.limit,
		Offset:          opts.offset,
		ApplicationName: opts.application,
		GroupName:       opts.group,
	})
	if err != nil {
		return err
	}

	w := newTabwriter(cmd.OutOrStdout())
	fmt.Fprintf(w, "STARTED\tCOMMAND\tAPPLICATION\tGROUP\tCOMMIT\tRUN\tDEPLOYMENT\tOUTCOME\tDURATION\n")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.RFC822),
			r.Command,
			r.ApplicationName,
			orDash(r.GroupName),
			shortCommit(r.CommitID),
			orDash(domain.FormatRunNumber(r.RunNumber)),
			orDash(r.DeploymentID),
			r.Outcome,
			r.Duration().Round(time.Second),
		)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortCommit(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
