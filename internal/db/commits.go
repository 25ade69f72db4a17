package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

const commitColumns = `repository, sha, author_name, author_email, committed_at, message, additions, deletions, category, commit_url`

// dbTime normalizes a timestamp to the stored form: UTC, whole seconds
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// LatestCommitDate returns the sync watermark: the newest stored commit time,
// or nil when nothing is stored for repo.
func (s *SQLStore) LatestCommitDate(ctx context.Context, repo string) (*time.Time, error) {
	// ORDER BY keeps the column type so the driver scans a time.Time
	query := s.q(`
		SELECT committed_at
		FROM commits
		WHERE repository = ?
		ORDER BY committed_at DESC
		LIMIT 1`)

	var latest time.Time
	err := s.db.QueryRowContext(ctx, query, repo).Scan(&latest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest commit date: %w", err)
	}

	latest = latest.UTC()
	return &latest, nil
}

// SaveCommits inserts commits in a single transaction, skipping any
// (repository, sha) already stored, and returns how many rows were new.
func (s *SQLStore) SaveCommits(ctx context.Context, repo string, commits []*models.Commit) (int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"repository": repo,
		"commits":    len(commits),
	})
	if len(commits) == 0 {
		return 0, nil
	}
	log.Debug("Saving commits")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.q(`
		INSERT INTO commits (`+commitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (repository, sha) DO NOTHING`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range commits {
		res, err := stmt.ExecContext(ctx,
			repo,
			c.SHA,
			c.AuthorName,
			c.AuthorEmail,
			dbTime(c.CommittedAt),
			c.Message,
			max(c.Additions, 0),
			max(c.Deletions, 0),
			string(c.Category),
			c.CommitURL)
		if err != nil {
			return 0, fmt.Errorf("failed to save commit %s: %w", c.SHA, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("inserted", inserted).Info("Saved commits")
	return inserted, nil
}

// AllCommits returns every stored commit of repo, newest first
func (s *SQLStore) AllCommits(ctx context.Context, repo string) ([]*models.Commit, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+commitColumns+`
		FROM commits
		WHERE repository = ?
		ORDER BY committed_at DESC, sha ASC`), repo)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer rows.Close()

	return scanCommits(rows)
}

// CategoryDistribution counts stored commits per category. Categories
// without commits are absent from the result.
func (s *SQLStore) CategoryDistribution(ctx context.Context, repo string) (map[models.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT category, COUNT(*)
		FROM commits
		WHERE repository = ?
		GROUP BY category`), repo)
	if err != nil {
		return nil, fmt.Errorf("failed to query category distribution: %w", err)
	}
	defer rows.Close()

	dist := make(map[models.Category]int)
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		dist[models.Category(category)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return dist, nil
}

// GetCommitsWithPagination retrieves commits with pagination and date filtering
func (s *SQLStore) GetCommitsWithPagination(ctx context.Context, repo string, limit, offset int, since, until *time.Time) ([]*models.Commit, int64, error) {
	where := ` FROM commits WHERE repository = ?`
	args := []interface{}{repo}

	if since != nil {
		where += ` AND committed_at >= ?`
		args = append(args, dbTime(*since))
	}
	if until != nil {
		where += ` AND committed_at <= ?`
		args = append(args, dbTime(*until))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*)`+where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	query := `SELECT ` + commitColumns + where + ` ORDER BY committed_at DESC, sha ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query commits: %w", err)
	}
	defer rows.Close()

	commits, err := scanCommits(rows)
	if err != nil {
		return nil, 0, err
	}
	return commits, total, nil
}

// GetTopCommitAuthors returns the authors with the most stored commits
func (s *SQLStore) GetTopCommitAuthors(ctx context.Context, repo string, limit int) ([]*models.AuthorStats, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT
			COALESCE(NULLIF(TRIM(author_name), ''), 'unknown') AS author,
			MIN(author_email),
			COUNT(*) AS commit_count
		FROM commits
		WHERE repository = ?
		GROUP BY 1
		ORDER BY commit_count DESC, author ASC
		LIMIT ?`), repo, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top authors: %w", err)
	}
	defer rows.Close()

	var authors []*models.AuthorStats
	for rows.Next() {
		var a models.AuthorStats
		if err := rows.Scan(&a.Name, &a.Email, &a.CommitCount); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authors: %w", err)
	}
	return authors, nil
}

func scanCommits(rows *sql.Rows) ([]*models.Commit, error) {
	var commits []*models.Commit
	for rows.Next() {
		var (
			c        models.Commit
			category string
		)
		if err := rows.Scan(
			&c.Repository,
			&c.SHA,
			&c.AuthorName,
			&c.AuthorEmail,
			&c.CommittedAt,
			&c.Message,
			&c.Additions,
			&c.Deletions,
			&category,
			&c.CommitURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}
		c.CommittedAt = c.CommittedAt.UTC()
		c.Category = models.Category(category)
		commits = append(commits, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commits: %w", err)
	}
	return commits, nil
}
