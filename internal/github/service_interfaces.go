package github

import (
	"context"
	"time"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

// CommitSource defines the interface for fetching remote commit history
type CommitSource interface {
	// FetchCommits returns up to limit commits at or after since. On failure
	// it may return the commits fetched so far together with the error.
	FetchCommits(ctx context.Context, repository string, since *time.Time, limit int) ([]*models.Commit, error)
}

// CommitStore defines the persistence operations a sync needs
type CommitStore interface {
	// LatestCommitDate gets the sync watermark, nil when nothing is stored
	LatestCommitDate(ctx context.Context, repo string) (*time.Time, error)

	// SaveCommits inserts new commits and returns how many were new
	SaveCommits(ctx context.Context, repo string, commits []*models.Commit) (int, error)

	// AllCommits loads the full stored history
	AllCommits(ctx context.Context, repo string) ([]*models.Commit, error)

	// RecordSyncRun persists the outcome of a sync
	RecordSyncRun(ctx context.Context, run *models.SyncRun) error

	// LatestSyncRun gets the most recent recorded sync
	LatestSyncRun(ctx context.Context, repo string) (*models.SyncRun, error)
}

// SyncRecorder receives sync outcomes for monitoring
type SyncRecorder interface {
	RecordSync(repository, result string, duration time.Duration, fetched, inserted int, score *int)
}
