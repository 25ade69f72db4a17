package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Kamar-Folarin/commit-health/internal/classifier"
	apperrors "github.com/Kamar-Folarin/commit-health/internal/errors"
	"github.com/Kamar-Folarin/commit-health/internal/models"
	"github.com/Kamar-Folarin/commit-health/internal/scoring"
	"github.com/Kamar-Folarin/commit-health/internal/utils"
)

// scoreResult is the assessment of the stored history, computed without
// contacting GitHub
type scoreResult struct {
	Repository   string                  `json:"repository" yaml:"repository"`
	Assessment   models.HealthAssessment `json:"assessment" yaml:"assessment"`
	Trend        models.Trend            `json:"trend" yaml:"trend"`
	Distribution map[models.Category]int `json:"distribution" yaml:"distribution"`
	Insights     *models.Insights        `json:"insights,omitempty" yaml:"insights,omitempty"`
}

func newScoreCmd(opts *rootOptions) *cobra.Command {
	var insights bool

	cmd := &cobra.Command{
		Use:   "score <owner/name>",
		Short: "Score the stored history of a repository",
		Long: `Score the commits already stored for a repository. ` +
			`Run sync first to fetch or refresh the history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.scoreStored(cmd.Context(), args[0], insights)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), opts.output, result, func(w io.Writer) {
				writeAssessment(w, result.Repository, result.Assessment, result.Trend)
				fmt.Fprintln(w)
				writeDistribution(w, result.Distribution)
				if result.Insights != nil {
					fmt.Fprintln(w)
					writeInsights(w, result.Insights)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&insights, "insights", false, "Include descriptive statistics")
	return cmd
}

// scoreStored loads every stored commit of repo and scores it. It fails with
// a not found error when nothing is stored.
func (a *app) scoreStored(ctx context.Context, repo string, withInsights bool) (*scoreResult, error) {
	_, _, fullName, err := utils.ParseRepository(repo)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid repository", err)
	}

	commits, err := a.store.AllCommits(ctx, fullName)
	if err != nil {
		return nil, fmt.Errorf("failed to load commits: %w", err)
	}
	if len(commits) == 0 {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("no commits stored for %s, run `commit-health sync %s` first", fullName, fullName), nil)
	}

	result := &scoreResult{
		Repository:   fullName,
		Assessment:   a.scorer.Score(commits),
		Trend:        scoring.Trend(commits),
		Distribution: classifier.Distribution(commits),
	}
	if withInsights {
		result.Insights = scoring.BuildInsights(commits)
	}
	return result, nil
}

func writeInsights(w io.Writer, in *models.Insights) {
	fmt.Fprintf(w, "Commits:       %d over %d days\n", in.TotalCommits, in.ActiveDays)
	fmt.Fprintf(w, "Contributors:  %d\n", in.Contributors)
	fmt.Fprintf(w, "Average churn: %.1f lines\n", in.AverageChurn)
	fmt.Fprintf(w, "Weekend share: %.1f%%\n", in.WeekendRatio*100)
	writeAuthors(w, in.TopContributors)
}
