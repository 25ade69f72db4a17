// Package scheduler re-syncs the configured default repository on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/commit-health/internal/errors"
	"github.com/Kamar-Folarin/commit-health/internal/models"
)

// Syncer runs one sync of a repository
type Syncer interface {
	Sync(ctx context.Context, repository string) (*models.SyncReport, error)
}

// Scheduler triggers Syncer for a single repository. A tick that fires while
// the previous sync is still running is skipped.
type Scheduler struct {
	syncer     Syncer
	repository string
	schedule   string
	logger     *logrus.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// New creates a scheduler; it does nothing until Start is called
func New(syncer Syncer, repository, schedule string, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		syncer:     syncer,
		repository: repository,
		schedule:   schedule,
		logger:     logger,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(logger)),
			cron.SkipIfStillRunning(cron.PrintfLogger(logger)),
		)),
	}
}

// Start registers the job and starts the cron loop. An empty repository or
// schedule disables the scheduler. The scheduler stops when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repository == "" || s.schedule == "" {
		s.logger.Info("No default repository or schedule configured, scheduler disabled")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.runSync(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.WithFields(logrus.Fields{
		"repository": s.repository,
		"schedule":   s.schedule,
	}).Info("Sync scheduler started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runSync(ctx context.Context) {
	logger := s.logger.WithField("repository", s.repository)
	logger.Info("Starting scheduled sync")

	report, err := s.syncer.Sync(ctx, s.repository)
	switch {
	case err == nil:
		logger.WithField("score", report.Score).Info("Scheduled sync completed")
	case apperrors.IsPartialSync(err):
		logger.WithError(err).WithField("score", report.Score).Warn("Scheduled sync completed with partial data")
	default:
		logger.WithError(err).Error("Scheduled sync failed")
	}
}

// Stop stops the scheduler and waits for a running sync to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("Sync scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sync time, or nil when not scheduled
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
