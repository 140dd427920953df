package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
)

func newJobsCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent import jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), func(svc domain.ServicePort) error {
				jobs, err := svc.ListJobs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), jobs)
				}
				return printJobs(cmd.OutOrStdout(), jobs)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum jobs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print jobs as JSON")
	return cmd
}

func printJobs(w io.Writer, jobs []domain.Job) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tSTARTED\tDETECTED\tINSERTED\tDUPLICATES\tERRORS\tDURATION")
	for _, j := range jobs {
		started := "-"
		if j.StartedAt != nil {
			started = j.StartedAt.UTC().Format(time.RFC3339)
		}
		duration := "running"
		if j.FinishedAt != nil {
			duration = (time.Duration(j.DurationMs) * time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			j.ID, j.FileName, started, j.RowsDetected, j.RowsInserted, j.RowsDuplicate, j.RowsError, duration)
	}
	return tw.Flush()
}
