package cli

import (
	"github.com/spf13/cobra"

	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/service"
)

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <job-id>",
		Short: "Write the audit log of a job as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(svc domain.ServicePort) error {
				entries, err := svc.JobLog(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return service.WriteLogCSV(cmd.OutOrStdout(), entries)
			})
		},
	}
}
