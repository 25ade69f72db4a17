package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kamar-Folarin/commit-health/internal/diagnosis"
	apperrors "github.com/Kamar-Folarin/commit-health/internal/errors"
)

func newDiagnoseCmd(opts *rootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "diagnose <owner/name>",
		Short: "Ask an LLM for a written diagnosis of a repository",
		Long: `Stream a short written diagnosis of the stored history of a repository. ` +
			`Requires OPENAI_API_KEY; OPENAI_BASE_URL selects any OpenAI compatible endpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			analyst, err := diagnosis.NewAnalyst(a.cfg.OpenAI, a.logger)
			if err != nil {
				return err
			}

			var facts diagnosis.Facts
			if refresh {
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
				facts = diagnosis.FactsFromReport(report)
			} else {
				result, err := a.scoreStored(cmd.Context(), args[0], false)
				if err != nil {
					return err
				}
				facts = diagnosis.Facts{
					Repository:    result.Repository,
					Score:         result.Assessment.Score,
					BusFactorRisk: result.Assessment.BusFactorRisk,
					Distribution:  result.Distribution,
					Trend:         result.Trend,
				}
			}

			out := cmd.OutOrStdout()
			if _, err := analyst.Diagnose(cmd.Context(), facts, out); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Sync the repository before diagnosing it")
	return cmd
}
