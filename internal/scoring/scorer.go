// Package scoring derives an explainable 0-100 health score from a commit history.
//
// The score is the sum of three independently clamped dimensions:
//
//	activity   (max 40) days since the latest commit
//	community  (max 30) distinct authors, minus a bus-factor penalty
//	stability  (max 30) span between the first and latest commit
//
// Reasons are appended in activity, community, stability order. Scoring only
// looks at the commit set, never at its order, so identical sets always give
// identical results.
package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

const (
	MaxActivity  = 40
	MaxCommunity = 30
	MaxStability = 30

	busFactorRatio   = 0.8
	busFactorPenalty = 10
)

// NoDataReason is the single reason given for an empty history
const NoDataReason = "No data available"

// Scorer computes health assessments against a reference clock
type Scorer struct {
	now    func() time.Time
	logger *logrus.Logger
}

// Option configures a Scorer
type Option func(*Scorer)

// WithClock sets the reference clock used for the activity dimension
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		s.now = now
	}
}

// WithLogger sets the logger used for degraded-mode warnings
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// NewScorer creates a scorer using the wall clock unless overridden
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		now:    time.Now,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the health assessment of a commit set
func (s *Scorer) Score(commits []*models.Commit) models.HealthAssessment {
	if len(commits) == 0 {
		return models.HealthAssessment{Reasons: []string{NoDataReason}}
	}

	var a models.HealthAssessment
	earliest, latest := timeBounds(commits)

	a.Activity, a.Degraded = s.activity(latest, &a.Reasons)
	a.Community = community(commits, &a)
	a.Stability = stability(latest.Sub(earliest), &a.Reasons)

	a.Score = clamp(a.Activity, MaxActivity) + clamp(a.Community, MaxCommunity) + clamp(a.Stability, MaxStability)
	return a
}

func (s *Scorer) activity(latest time.Time, reasons *[]string) (int, bool) {
	now := s.now().UTC()

	degraded := false
	var days int
	if latest.IsZero() || latest.After(now) {
		// Not comparable with the reference clock. Treat the whole history as
		// recent; this biases activity upward.
		s.logger.WithFields(logrus.Fields{
			"latest_commit": latest,
			"reference":     now,
		}).Warn("Commit timestamps not comparable with reference clock, treating full history as recent")
		degraded = true
	} else {
		days = wholeDays(now.Sub(latest))
	}

	switch {
	case days < 30:
		*reasons = append(*reasons, "Very Active: commits in the last 30 days.")
		return 40, degraded
	case days < 90:
		*reasons = append(*reasons, "Slowing Down: no commits in the last month.")
		return 20, degraded
	default:
		*reasons = append(*reasons, "Inactive: no commits in the last 3 months.")
		return 0, degraded
	}
}

func community(commits []*models.Commit, a *models.HealthAssessment) int {
	counts := authorCounts(commits)
	top := 0
	for _, n := range counts {
		if n > top {
			top = n
		}
	}

	a.Authors = len(counts)
	a.TopContributorRatio = float64(top) / float64(len(commits))

	var score int
	switch {
	case a.Authors >= 10:
		score = 30
		a.Reasons = append(a.Reasons, "Healthy Community: 10 or more contributors.")
	case a.Authors >= 3:
		score = 15
		a.Reasons = append(a.Reasons, "Small Team: fewer than 10 contributors.")
	default:
		score = 5
		a.Reasons = append(a.Reasons, "Bus Factor Risk: only 1-2 contributors.")
	}

	// single-author projects are not penalized for being single-author
	if a.TopContributorRatio > busFactorRatio && a.Authors > 1 {
		score = max(0, score-busFactorPenalty)
		a.BusFactorRisk = true
		a.Reasons = append(a.Reasons, fmt.Sprintf("HIGH RISK: One developer wrote %.1f%% of commits.", a.TopContributorRatio*100))
	}
	return score
}

func stability(age time.Duration, reasons *[]string) int {
	days := wholeDays(age)
	switch {
	case days > 180:
		*reasons = append(*reasons, "Mature Project: more than 6 months of history.")
		return 30
	case days > 30:
		*reasons = append(*reasons, "Young Project: less than 6 months of history.")
		return 15
	default:
		*reasons = append(*reasons, "Baby Project: just started.")
		return 0
	}
}

// authorIdentity is the trimmed author name; unnamed authors share one identity
func authorIdentity(c *models.Commit) string {
	name := strings.TrimSpace(c.AuthorName)
	if name == "" {
		return "unknown"
	}
	return name
}

func authorCounts(commits []*models.Commit) map[string]int {
	counts := make(map[string]int)
	for _, c := range commits {
		counts[authorIdentity(c)]++
	}
	return counts
}

// timeBounds ignores zero timestamps; both results are zero when every
// timestamp is unknown.
func timeBounds(commits []*models.Commit) (earliest, latest time.Time) {
	for _, c := range commits {
		if c.CommittedAt.IsZero() {
			continue
		}
		t := c.CommittedAt.UTC()
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
		if t.After(latest) {
			latest = t
		}
	}
	return earliest, latest
}

func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
