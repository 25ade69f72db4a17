package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apperrors "github.com/Kamar-Folarin/commit-health/internal/errors"
	"github.com/Kamar-Folarin/commit-health/internal/models"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <owner/name>",
		Short: "Fetch new commits of a repository and rescore it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			p := newProgress(cmd.ErrOrStderr(), "Syncing "+args[0])
			p.Start()
			report, err := a.syncer.Sync(cmd.Context(), args[0])
			p.Stop()

			if err != nil && !apperrors.IsPartialSync(err) {
				return err
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}

			return render(cmd.OutOrStdout(), opts.output, report, func(w io.Writer) {
				writeReport(w, report)
			})
		},
	}
}

func writeReport(w io.Writer, report *models.SyncReport) {
	writeSyncRun(w, report.SyncRun)
	fmt.Fprintln(w)
	writeAssessment(w, report.Repository, report.Assessment, report.Trend)
	fmt.Fprintln(w)
	writeDistribution(w, report.Distribution)
}
