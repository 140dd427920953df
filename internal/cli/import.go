package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
)

func newImportCmd() *cobra.Command {
	var videoSource string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a .csv or .xlsx export in one shot",
		Long:  "Import every row of a spreadsheet export as one job and print the job summary as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return withService(cmd.Context(), func(svc domain.ServicePort) error {
				sum, runErr := svc.Run(cmd.Context(), domain.RunInput{
					File:        data,
					FileName:    filepath.Base(args[0]),
					VideoSource: videoSource,
				})
				// a job that stopped midway still has counters worth printing
				if sum.JobID != "" {
					if err := printJSON(cmd.OutOrStdout(), sum); err != nil {
						return err
					}
				}
				return runErr
			})
		},
	}

	cmd.Flags().StringVar(&videoSource, "video-source", "", "video source stamped on every imported comment")
	return cmd
}
