package scoring

import (
	"fmt"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestScorer() *Scorer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewScorer(WithClock(func() time.Time { return testNow }), WithLogger(logger))
}

// makeCommits creates n commits; author and age (days before testNow) are chosen per index
func makeCommits(n int, author func(i int) string, ageDays func(i int) float64) []*models.Commit {
	commits := make([]*models.Commit, 0, n)
	for i := 0; i < n; i++ {
		commits = append(commits, &models.Commit{
			SHA:         fmt.Sprintf("sha-%03d", i),
			Repository:  "owner/repo",
			AuthorName:  author(i),
			CommittedAt: testNow.Add(-time.Duration(ageDays(i) * 24 * float64(time.Hour))),
			Message:     "commit",
		})
	}
	return commits
}

func TestScore_Empty(t *testing.T) {
	a := newTestScorer().Score(nil)
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, []string{NoDataReason}, a.Reasons)
}

func TestScore_CommunityPenalty(t *testing.T) {
	others := []string{"bob", "carol", "dave", "erin"}
	commits := makeCommits(100, func(i int) string {
		if i < 85 {
			return "alice"
		}
		return others[i%len(others)]
	}, func(i int) float64 { return float64(i) })

	a := newTestScorer().Score(commits)
	assert.Equal(t, 5, a.Authors)
	assert.InDelta(t, 0.85, a.TopContributorRatio, 1e-9)
	assert.Equal(t, 5, a.Community)
	assert.True(t, a.BusFactorRisk)
	assert.Contains(t, a.Reasons, "HIGH RISK: One developer wrote 85.0% of commits.")
}

func TestScore_SingleAuthorNotPenalized(t *testing.T) {
	commits := makeCommits(100, func(int) string { return "solo" }, func(i int) float64 { return float64(i) })

	a := newTestScorer().Score(commits)
	assert.Equal(t, 1, a.Authors)
	assert.Equal(t, 5, a.Community)
	assert.False(t, a.BusFactorRisk)
	for _, r := range a.Reasons {
		assert.NotContains(t, r, "HIGH RISK")
	}
}

func TestScore_Activity(t *testing.T) {
	tests := []struct {
		name      string
		latestAge float64
		expected  int
	}{
		{"recent", 10, 40},
		{"just under a month", 29.9, 40},
		{"exactly 30 days", 30, 20},
		{"slowing down", 45, 20},
		{"exactly 90 days", 90, 0},
		{"inactive", 400, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commits := makeCommits(3, func(i int) string { return fmt.Sprintf("a%d", i) },
				func(i int) float64 { return tt.latestAge + float64(i) })
			a := newTestScorer().Score(commits)
			assert.Equal(t, tt.expected, a.Activity)
			assert.False(t, a.Degraded)
		})
	}
}

func TestScore_Stability(t *testing.T) {
	tests := []struct {
		name     string
		spanDays float64
		expected int
	}{
		{"mature", 200, 30},
		{"exactly 180 days", 180, 15},
		{"young", 100, 15},
		{"exactly 30 days", 30, 0},
		{"baby", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commits := makeCommits(2, func(i int) string { return fmt.Sprintf("a%d", i) },
				func(i int) float64 { return float64(i) * tt.spanDays })
			a := newTestScorer().Score(commits)
			assert.Equal(t, tt.expected, a.Stability)
		})
	}
}

func TestScore_FullMarksAndReasonOrder(t *testing.T) {
	commits := makeCommits(120, func(i int) string { return fmt.Sprintf("dev-%d", i%12) },
		func(i int) float64 { return float64(i) * 2 })

	a := newTestScorer().Score(commits)
	assert.Equal(t, 100, a.Score)
	require.Len(t, a.Reasons, 3)
	assert.Contains(t, a.Reasons[0], "Very Active")
	assert.Contains(t, a.Reasons[1], "Healthy Community")
	assert.Contains(t, a.Reasons[2], "Mature Project")
}

func TestScore_SumOfDimensions(t *testing.T) {
	commits := makeCommits(40, func(i int) string { return fmt.Sprintf("dev-%d", i%4) },
		func(i int) float64 { return 50 + float64(i)*3 })

	a := newTestScorer().Score(commits)
	assert.Equal(t, 20, a.Activity)
	assert.Equal(t, 15, a.Community)
	assert.Equal(t, 15, a.Stability)
	assert.Equal(t, a.Activity+a.Community+a.Stability, a.Score)
}

func TestScore_OrderIndependent(t *testing.T) {
	commits := makeCommits(60, func(i int) string { return fmt.Sprintf("dev-%d", i%7) },
		func(i int) float64 { return float64(i*i%97) + 0.5 })
	expected := newTestScorer().Score(commits)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5; i++ {
		shuffled := append([]*models.Commit(nil), commits...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, expected, newTestScorer().Score(shuffled))
	}
}

func TestScore_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n <= 50; n++ {
		authors := rng.Intn(15) + 1
		spread := rng.Float64() * 500
		commits := makeCommits(n, func(int) string { return fmt.Sprintf("dev-%d", rng.Intn(authors)) },
			func(int) float64 { return rng.Float64() * spread })

		a := newTestScorer().Score(commits)
		assert.GreaterOrEqual(t, a.Score, 0)
		assert.LessOrEqual(t, a.Score, 100)
		assert.Len(t, a.Reasons, 3+boolToInt(a.BusFactorRisk))
	}
}

func TestScore_DegradedWhenTimestampsNotComparable(t *testing.T) {
	t.Run("future timestamps", func(t *testing.T) {
		commits := makeCommits(5, func(i int) string { return fmt.Sprintf("a%d", i) },
			func(i int) float64 { return -3 - float64(i) })
		a := newTestScorer().Score(commits)
		assert.True(t, a.Degraded)
		assert.Equal(t, 40, a.Activity)
	})

	t.Run("unknown timestamps", func(t *testing.T) {
		commits := []*models.Commit{{SHA: "a", AuthorName: "x"}, {SHA: "b", AuthorName: "y"}}
		a := newTestScorer().Score(commits)
		assert.True(t, a.Degraded)
		assert.Equal(t, 40, a.Activity)
		assert.Equal(t, 0, a.Stability)
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
