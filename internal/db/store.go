package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// goose keeps its dialect and base FS in package globals
var gooseMu sync.Mutex

// Store defines the interface for database operations
type Store interface {
	// Commit operations
	LatestCommitDate(ctx context.Context, repo string) (*time.Time, error)
	SaveCommits(ctx context.Context, repo string, commits []*models.Commit) (int, error)
	AllCommits(ctx context.Context, repo string) ([]*models.Commit, error)
	CategoryDistribution(ctx context.Context, repo string) (map[models.Category]int, error)
	GetCommitsWithPagination(ctx context.Context, repo string, limit, offset int, since, until *time.Time) ([]*models.Commit, int64, error)
	GetTopCommitAuthors(ctx context.Context, repo string, limit int) ([]*models.AuthorStats, error)

	// Sync operations
	RecordSyncRun(ctx context.Context, run *models.SyncRun) error
	LatestSyncRun(ctx context.Context, repo string) (*models.SyncRun, error)

	Close() error
}

// SQLStore implements Store on top of database/sql for every supported dialect
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *logrus.Logger
}

// StoreOption configures a SQLStore
type StoreOption func(*SQLStore)

// WithLogger sets the logger used by the store and its migrations
func WithLogger(logger *logrus.Logger) StoreOption {
	return func(s *SQLStore) {
		s.logger = logger
	}
}

// Open connects to the database named by driver ("sqlite" or "postgres")
func Open(driver, connectionString string, opts ...StoreOption) (*SQLStore, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.driverName(), dialect.dsn(connectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	dialect.configure(db)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewSQLStore(db, dialect, opts...), nil
}

// NewSQLStore wraps an already opened handle
func NewSQLStore(db *sql.DB, dialect Dialect, opts ...StoreOption) *SQLStore {
	s := &SQLStore{
		db:      db,
		dialect: dialect,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate applies all pending schema migrations for the store's dialect
func (s *SQLStore) Migrate() error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(s.logger)

	if err := goose.SetDialect(s.dialect.gooseDialect()); err != nil {
		return err
	}

	if err := goose.Up(s.db, s.dialect.migrationsDir()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// DB exposes the underlying handle
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// q rewrites a query written with ? placeholders for the store's dialect
func (s *SQLStore) q(query string) string {
	return s.dialect.rebind(query)
}
