package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/commit-health/internal/config"
	"github.com/Kamar-Folarin/commit-health/internal/db"
	"github.com/Kamar-Folarin/commit-health/internal/github"
	"github.com/Kamar-Folarin/commit-health/internal/metrics"
	"github.com/Kamar-Folarin/commit-health/internal/scoring"
)

// app holds the collaborators shared by every command. The store is opened
// once per process and passed explicitly.
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	store   *db.SQLStore
	client  *github.GitHubClient
	metrics *metrics.Collector
	scorer  *scoring.Scorer
	syncer  *github.SyncService
}

func newLogger(level logrus.Level, out io.Writer, json bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if json {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}
	return logger
}

// newApp loads configuration and connects the store, running migrations
func newApp(configFile string, logOut io.Writer, jsonLogs bool) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg.LogLevel, logOut, jsonLogs)

	if err := ensureSQLiteDir(cfg.DB); err != nil {
		return nil, err
	}

	store, err := db.Open(cfg.DB.Driver, cfg.DB.ConnectionString, db.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := retry(3, 2*time.Second, store.Migrate); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations after retries: %w", err)
	}

	if cfg.GitHub.Token == "" {
		logger.Warn("GITHUB_TOKEN is not set, requests are limited to 60 per hour")
	}

	client := github.NewGitHubClient(cfg.GitHub.Token, logger,
		github.WithBaseURL(cfg.GitHub.APIBaseURL),
		github.WithCommitStats(cfg.GitHub.FetchStats),
		github.WithRetryConfig(
			cfg.GitHub.RateLimit.MaxRetries,
			cfg.GitHub.RateLimit.InitialBackoff,
			cfg.GitHub.RateLimit.MaxBackoff,
		),
	)

	collector := metrics.NewCollector(nil)
	scorer := scoring.NewScorer(scoring.WithLogger(logger))

	syncer := github.NewSyncService(client, store, cfg.Sync,
		github.WithScorer(scorer),
		github.WithMetrics(collector),
		github.WithSyncLogger(logger),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		client:  client,
		metrics: collector,
		scorer:  scorer,
		syncer:  syncer,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// ensureSQLiteDir creates the parent directory of a file backed SQLite
// database
func ensureSQLiteDir(cfg config.DBConfig) error {
	if cfg.Driver != config.DefaultDBDriver {
		return nil
	}
	path := cfg.ConnectionString
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return nil
}

// retry retries a function up to a certain number of attempts with a delay between attempts
func retry(attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if attempts--; attempts > 0 {
			time.Sleep(sleep)
			return retry(attempts, sleep, fn)
		}
		return err
	}
	return nil
}
