package models

import "time"

// HealthAssessment is the computed health of a repository. It is derived
// from the full stored history on every sync and never persisted.
type HealthAssessment struct {
	Score               int      `json:"score" yaml:"score"`
	Reasons             []string `json:"reasons" yaml:"reasons"`
	Activity            int      `json:"activity" yaml:"activity"`
	Community           int      `json:"community" yaml:"community"`
	Stability           int      `json:"stability" yaml:"stability"`
	Authors             int      `json:"authors" yaml:"authors"`
	TopContributorRatio float64  `json:"top_contributor_ratio" yaml:"top_contributor_ratio"`
	BusFactorRisk       bool     `json:"bus_factor_risk" yaml:"bus_factor_risk"`
	// Degraded is set when commit timestamps could not be compared with the
	// reference clock and the activity score fell back to "recent".
	Degraded bool `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// Trend is a coarse activity label comparing recent weekly commit counts
// against the all-time weekly mean.
type Trend string

const (
	TrendRising  Trend = "Rising"
	TrendStable  Trend = "Stable"
	TrendFalling Trend = "Falling"
)

// WeeklyCount is the number of commits in the week ending on WeekEnding (a Sunday, UTC).
type WeeklyCount struct {
	WeekEnding time.Time `json:"week_ending" yaml:"week_ending"`
	Commits    int       `json:"commits" yaml:"commits"`
}

// Insights are the descriptive statistics shown next to the score
type Insights struct {
	TotalCommits    int            `json:"total_commits" yaml:"total_commits"`
	Contributors    int            `json:"contributors" yaml:"contributors"`
	ActiveDays      int            `json:"active_days" yaml:"active_days"`
	WeeklyCommits   []WeeklyCount  `json:"weekly_commits" yaml:"weekly_commits"`
	Trend           Trend          `json:"trend" yaml:"trend"`
	WeekdayCommits  map[string]int `json:"weekday_commits" yaml:"weekday_commits"`
	WeekendRatio    float64        `json:"weekend_ratio" yaml:"weekend_ratio"`
	TopContributors []*AuthorStats `json:"top_contributors" yaml:"top_contributors"`
	AverageChurn    float64        `json:"average_churn" yaml:"average_churn"`
}
