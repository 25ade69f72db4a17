package api

import (
	"context"
	"time"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

// CommitReader is the read side of the commit store used by the handlers
type CommitReader interface {
	GetCommitsWithPagination(ctx context.Context, repo string, limit, offset int, since, until *time.Time) ([]*models.Commit, int64, error)
	GetTopCommitAuthors(ctx context.Context, repo string, limit int) ([]*models.AuthorStats, error)
	AllCommits(ctx context.Context, repo string) ([]*models.Commit, error)
	CategoryDistribution(ctx context.Context, repo string) (map[models.Category]int, error)
}

// Syncer runs syncs and reports their status
type Syncer interface {
	Sync(ctx context.Context, repository string) (*models.SyncReport, error)
	Status(ctx context.Context, repository string) (*models.SyncRun, error)
}
