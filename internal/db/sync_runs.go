package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/Kamar-Folarin/commit-health/internal/errors"
	"github.com/Kamar-Folarin/commit-health/internal/models"
)

// RecordSyncRun stores the outcome of a sync invocation. Recording the same
// run id twice overwrites the earlier row.
func (s *SQLStore) RecordSyncRun(ctx context.Context, run *models.SyncRun) error {
	var since interface{}
	if run.Since != nil {
		since = dbTime(*run.Since)
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO sync_runs (run_id, repository, state, since, fetched, inserted, total, score, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			state = excluded.state,
			fetched = excluded.fetched,
			inserted = excluded.inserted,
			total = excluded.total,
			score = excluded.score,
			error = excluded.error,
			finished_at = excluded.finished_at`),
		run.RunID,
		run.Repository,
		string(run.State),
		since,
		run.Fetched,
		run.Inserted,
		run.Total,
		run.Score,
		run.Error,
		dbTime(run.StartedAt),
		dbTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// LatestSyncRun returns the most recently started run for repo, or a
// NotFound error when the repository was never synced.
func (s *SQLStore) LatestSyncRun(ctx context.Context, repo string) (*models.SyncRun, error) {
	var (
		run   models.SyncRun
		state string
		since sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT run_id, repository, state, since, fetched, inserted, total, score, error, started_at, finished_at
		FROM sync_runs
		WHERE repository = ?
		ORDER BY started_at DESC, finished_at DESC
		LIMIT 1`), repo).Scan(
		&run.RunID,
		&run.Repository,
		&state,
		&since,
		&run.Fetched,
		&run.Inserted,
		&run.Total,
		&run.Score,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no sync recorded for %s", repo), err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync run: %w", err)
	}

	run.State = models.SyncState(state)
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	if since.Valid {
		t := since.Time.UTC()
		run.Since = &t
	}
	return &run, nil
}
