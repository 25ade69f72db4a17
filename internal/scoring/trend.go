package scoring

import (
	"time"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

const (
	trendRecentWeeks  = 4
	trendRisingRatio  = 1.2
	trendFallingRatio = 0.5
)

// weekEnding returns the Sunday (UTC midnight) closing the week containing t
func weekEnding(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (7 - int(day.Weekday())) % 7
	return day.AddDate(0, 0, offset)
}

// WeeklyCommits buckets commits into consecutive Sunday-ending weeks from the
// first commit's week to the latest one. Weeks without commits are kept as zero.
func WeeklyCommits(commits []*models.Commit) []models.WeeklyCount {
	counts := make(map[time.Time]int)
	var first, last time.Time
	for _, c := range commits {
		if c.CommittedAt.IsZero() {
			continue
		}
		w := weekEnding(c.CommittedAt)
		counts[w]++
		if first.IsZero() || w.Before(first) {
			first = w
		}
		if w.After(last) {
			last = w
		}
	}
	if first.IsZero() {
		return nil
	}

	var weeks []models.WeeklyCount
	for w := first; !w.After(last); w = w.AddDate(0, 0, 7) {
		weeks = append(weeks, models.WeeklyCount{WeekEnding: w, Commits: counts[w]})
	}
	return weeks
}

// Trend compares the mean of the most recent four weekly buckets against the
// all-time weekly mean.
func Trend(commits []*models.Commit) models.Trend {
	return trendOf(WeeklyCommits(commits))
}

func trendOf(weeks []models.WeeklyCount) models.Trend {
	if len(weeks) == 0 {
		return models.TrendStable
	}

	total := 0
	for _, w := range weeks {
		total += w.Commits
	}
	mean := float64(total) / float64(len(weeks))

	n := min(trendRecentWeeks, len(weeks))
	recentTotal := 0
	for _, w := range weeks[len(weeks)-n:] {
		recentTotal += w.Commits
	}
	recent := float64(recentTotal) / float64(n)

	switch {
	case recent > trendRisingRatio*mean:
		return models.TrendRising
	case recent < trendFallingRatio*mean:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}
