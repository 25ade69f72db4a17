package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/commit-health/internal/classifier"
	"github.com/Kamar-Folarin/commit-health/internal/config"
	"github.com/Kamar-Folarin/commit-health/internal/errors"
	"github.com/Kamar-Folarin/commit-health/internal/metrics"
	"github.com/Kamar-Folarin/commit-health/internal/models"
	"github.com/Kamar-Folarin/commit-health/internal/scoring"
	"github.com/Kamar-Folarin/commit-health/internal/utils"
)

// SyncService runs the fetch, classify, persist and score pipeline for one
// repository per call
type SyncService struct {
	source  CommitSource
	store   CommitStore
	config  *config.SyncConfig
	scorer  *scoring.Scorer
	status  *StatusManager
	metrics SyncRecorder
	logger  *logrus.Logger
	now     func() time.Time
}

// SyncOption configures a SyncService
type SyncOption func(*SyncService)

// WithScorer replaces the default wall-clock scorer
func WithScorer(scorer *scoring.Scorer) SyncOption {
	return func(s *SyncService) {
		s.scorer = scorer
	}
}

// WithMetrics reports every finished sync to recorder
func WithMetrics(recorder SyncRecorder) SyncOption {
	return func(s *SyncService) {
		s.metrics = recorder
	}
}

// WithSyncLogger sets the logger
func WithSyncLogger(logger *logrus.Logger) SyncOption {
	return func(s *SyncService) {
		s.logger = logger
	}
}

// NewSyncService creates a new sync service
func NewSyncService(source CommitSource, store CommitStore, cfg *config.SyncConfig, opts ...SyncOption) *SyncService {
	if cfg == nil {
		cfg = config.DefaultSyncConfig()
	}
	s := &SyncService{
		source: source,
		store:  store,
		config: cfg,
		status: NewStatusManager(),
		logger: logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scorer == nil {
		s.scorer = scoring.NewScorer(scoring.WithLogger(s.logger))
	}
	return s
}

// syncRun carries the state of one invocation through the pipeline
type syncRun struct {
	models.SyncRun
	logger *logrus.Entry
}

// Sync ingests new commits of repository and rescores its full stored
// history.
//
// Fetch failures other than an unknown repository do not abort the run: the
// commits fetched before the failure are persisted and scored, and the
// report is returned together with a *errors.PartialSyncError. Watermark,
// persistence and reload failures are fatal and return a nil report.
func (s *SyncService) Sync(ctx context.Context, repository string) (*models.SyncReport, error) {
	_, _, fullName, err := utils.ParseRepository(repository)
	if err != nil {
		return nil, errors.NewValidationError("invalid repository", err)
	}

	run := &syncRun{
		SyncRun: models.SyncRun{
			RunID:      uuid.NewString(),
			Repository: fullName,
			State:      models.SyncStateIdle,
			StartedAt:  s.now().UTC(),
		},
	}
	run.logger = s.logger.WithFields(logrus.Fields{
		"repository": fullName,
		"run_id":     run.RunID,
	})

	s.status.Begin(&run.SyncRun)
	defer s.status.Finish(&run.SyncRun)

	if n := s.status.Count(fullName); n > 1 {
		run.logger.WithField("active_runs", n).Warn("Another sync of this repository is running, duplicates will be skipped by the store")
	}
	run.logger.Info("Starting sync")

	s.transition(run, models.SyncStateFetchingWatermark)
	since, err := s.store.LatestCommitDate(ctx, fullName)
	if err != nil {
		return nil, s.fail(ctx, run, fmt.Errorf("failed to get last commit date: %w", err))
	}
	run.Since = since
	if since != nil {
		run.logger.WithField("since", *since).Info("Using last commit date from database")
	} else {
		run.logger.Info("No previous commits found, will fetch full history")
	}

	s.transition(run, models.SyncStateFetching)
	commits, fetchErr := s.source.FetchCommits(ctx, fullName, since, s.config.BatchLimit)
	run.Fetched = len(commits)
	if fetchErr != nil {
		if errors.IsNotFound(fetchErr) && len(commits) == 0 {
			return nil, s.fail(ctx, run, fetchErr)
		}
		run.logger.WithError(fetchErr).WithField("fetched", len(commits)).
			Warn("Fetch stopped early, continuing with partial results")
	}

	s.transition(run, models.SyncStateClassifying)
	for _, c := range commits {
		c.Repository = fullName
		c.Category = classifier.Classify(c.Message)
	}

	s.transition(run, models.SyncStatePersisting)
	inserted, err := s.store.SaveCommits(ctx, fullName, commits)
	if err != nil {
		return nil, s.fail(ctx, run, fmt.Errorf("failed to save commits: %w", err))
	}
	run.Inserted = inserted

	s.transition(run, models.SyncStateReloading)
	all, err := s.store.AllCommits(ctx, fullName)
	if err != nil {
		return nil, s.fail(ctx, run, fmt.Errorf("failed to load commits: %w", err))
	}
	run.Total = len(all)

	s.transition(run, models.SyncStateScoring)
	report := &models.SyncReport{
		Assessment:   s.scorer.Score(all),
		Distribution: classifier.Distribution(all),
		Trend:        scoring.Trend(all),
	}
	run.Score = report.Assessment.Score

	if fetchErr != nil {
		run.Error = fetchErr.Error()
	}
	s.transition(run, models.SyncStateDone)
	run.FinishedAt = s.now().UTC()
	report.SyncRun = run.SyncRun

	result := metrics.ResultSuccess
	if fetchErr != nil {
		result = metrics.ResultPartial
	}
	s.record(ctx, run, result)

	run.logger.WithFields(logrus.Fields{
		"fetched":  run.Fetched,
		"inserted": run.Inserted,
		"total":    run.Total,
		"score":    run.Score,
		"duration": run.Duration(),
	}).Info("Sync completed")

	if fetchErr != nil {
		return report, errors.NewPartialSyncError(fullName, len(commits), fetchErr)
	}
	return report, nil
}

// Status returns the running sync of repository if there is one, otherwise
// the latest recorded run
func (s *SyncService) Status(ctx context.Context, repository string) (*models.SyncRun, error) {
	_, _, fullName, err := utils.ParseRepository(repository)
	if err != nil {
		return nil, errors.NewValidationError("invalid repository", err)
	}
	if run, ok := s.status.Active(fullName); ok {
		return run, nil
	}
	return s.store.LatestSyncRun(ctx, fullName)
}

func (s *SyncService) transition(run *syncRun, state models.SyncState) {
	run.logger.WithFields(logrus.Fields{
		"from": run.State,
		"to":   state,
	}).Debug("Sync state transition")
	run.State = state
	s.status.Update(&run.SyncRun)
}

// fail moves run to Failed, records it and returns err annotated with the
// stage it failed in
func (s *SyncService) fail(ctx context.Context, run *syncRun, err error) error {
	stage := run.State
	run.Error = err.Error()
	s.transition(run, models.SyncStateFailed)
	run.FinishedAt = s.now().UTC()

	run.logger.WithError(err).WithField("stage", stage).Error("Sync failed")
	s.record(ctx, run, metrics.ResultFailed)

	return fmt.Errorf("sync of %s failed while %s: %w", run.Repository, stage, err)
}

// record persists the run and reports metrics. Failures here are logged only.
func (s *SyncService) record(ctx context.Context, run *syncRun, result string) {
	// the run is recorded even when the caller's context is already done
	recordCtx := context.WithoutCancel(ctx)
	if err := s.store.RecordSyncRun(recordCtx, &run.SyncRun); err != nil {
		run.logger.WithError(err).Warn("Failed to record sync run")
	}

	if s.metrics != nil {
		var score *int
		if run.State == models.SyncStateDone {
			score = &run.Score
		}
		s.metrics.RecordSync(run.Repository, result, run.Duration(), run.Fetched, run.Inserted, score)
	}
}
