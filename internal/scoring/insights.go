package scoring

import (
	"sort"
	"time"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

const topContributorLimit = 10

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// BuildInsights computes the descriptive statistics for a commit history
func BuildInsights(commits []*models.Commit) *models.Insights {
	in := &models.Insights{
		TotalCommits:   len(commits),
		WeekdayCommits: make(map[string]int, len(weekdayOrder)),
		Trend:          models.TrendStable,
	}
	for _, d := range weekdayOrder {
		in.WeekdayCommits[d.String()] = 0
	}
	if len(commits) == 0 {
		return in
	}

	churn := 0
	for _, c := range commits {
		churn += c.Churn()
		if !c.CommittedAt.IsZero() {
			in.WeekdayCommits[c.CommittedAt.UTC().Weekday().String()]++
		}
	}
	in.AverageChurn = float64(churn) / float64(len(commits))

	weekend := in.WeekdayCommits[time.Saturday.String()] + in.WeekdayCommits[time.Sunday.String()]
	in.WeekendRatio = float64(weekend) / float64(len(commits))

	earliest, latest := timeBounds(commits)
	in.ActiveDays = wholeDays(latest.Sub(earliest))

	in.WeeklyCommits = WeeklyCommits(commits)
	in.Trend = trendOf(in.WeeklyCommits)

	in.TopContributors = TopContributors(commits, topContributorLimit)
	in.Contributors = len(authorCounts(commits))
	return in
}

// TopContributors returns up to limit authors ordered by commit count
// descending, then name ascending.
func TopContributors(commits []*models.Commit, limit int) []*models.AuthorStats {
	byName := make(map[string]*models.AuthorStats)
	for _, c := range commits {
		id := authorIdentity(c)
		s, ok := byName[id]
		if !ok {
			s = &models.AuthorStats{Name: id}
			byName[id] = s
		}
		// smallest email wins so the result does not depend on input order
		if c.AuthorEmail != "" && (s.Email == "" || c.AuthorEmail < s.Email) {
			s.Email = c.AuthorEmail
		}
		s.CommitCount++
	}

	stats := make([]*models.AuthorStats, 0, len(byName))
	for _, s := range byName {
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].CommitCount != stats[j].CommitCount {
			return stats[i].CommitCount > stats[j].CommitCount
		}
		return stats[i].Name < stats[j].Name
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}
