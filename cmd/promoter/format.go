package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/artpar/promoter/internal/core/domain"
	"github.com/artpar/promoter/internal/shell/promotion"
)

func newTabwriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
}

func makeExample(examples ...string) string {
	return "  " + strings.Join(examples, "\n  ")
}

// printResult writes a short human summary of a promotion.
func printResult(w io.Writer, result *promotion.Result) {
	if result == nil {
		return
	}
	switch result.Outcome {
	case domain.OutcomeSkipped:
		fmt.Fprintln(w, "Nothing to do for this branch.")
	case domain.OutcomeGroupDeleted:
		fmt.Fprintf(w, "Deleted deployment group %s.\n", result.GroupName)
	case domain.OutcomeSucceeded:
		tw := newTabwriter(w)
		fmt.Fprintf(tw, "GROUP\tCREATED\tDEPLOYMENT\tOUTCOME\n")
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", result.GroupName, result.GroupCreated, result.DeploymentID, result.Outcome)
		tw.Flush()
	}
}
