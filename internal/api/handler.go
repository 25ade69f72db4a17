package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/commit-health/internal/classifier"
	apperrors "github.com/Kamar-Folarin/commit-health/internal/errors"
	"github.com/Kamar-Folarin/commit-health/internal/scoring"
	"github.com/Kamar-Folarin/commit-health/internal/utils"
)

const (
	defaultCommitLimit = 50
	defaultAuthorLimit = 10
	maxLimit           = 1000
)

// Handler handles HTTP requests for repositories
type Handler struct {
	store  CommitReader
	syncer Syncer
	scorer *scoring.Scorer
	logger *logrus.Logger
}

// NewHandler creates a new API handler
func NewHandler(store CommitReader, syncer Syncer, scorer *scoring.Scorer, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if scorer == nil {
		scorer = scoring.NewScorer(scoring.WithLogger(logger))
	}
	return &Handler{
		store:  store,
		syncer: syncer,
		scorer: scorer,
		logger: logger,
	}
}

// repository validates the :owner and :repo path parameters and returns the
// canonical full name
func repository(c *gin.Context) (string, error) {
	_, _, fullName, err := utils.ParseRepository(c.Param("owner") + "/" + c.Param("repo"))
	if err != nil {
		return "", apperrors.NewValidationError("invalid repository", err)
	}
	return fullName, nil
}

// GetRepositoryCommits godoc
// @Summary Get repository commits
// @Description Get stored commits of a repository, newest first, with optional date filtering
// @Tags repository
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Param limit query int false "Number of commits to return" default(50)
// @Param offset query int false "Number of commits to skip" default(0)
// @Param since query string false "Filter commits since this date (RFC3339)"
// @Param until query string false "Filter commits until this date (RFC3339)"
// @Success 200 {object} CommitListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{repo}/commits [get]
func (h *Handler) GetRepositoryCommits(c *gin.Context) {
	repo, err := repository(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	limit, err := intQuery(c, "limit", defaultCommitLimit, 1, maxLimit)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0, 0, -1)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	since, until, err := dateRange(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	commits, total, err := h.store.GetCommitsWithPagination(c.Request.Context(), repo, limit, offset, since, until)
	if err != nil {
		h.respondWithError(c, apperrors.NewInternalError("failed to get commits", err))
		return
	}

	resp := CommitListResponse{Data: commits}
	resp.Pagination.Total = total
	resp.Pagination.Limit = limit
	resp.Pagination.Offset = offset
	c.JSON(http.StatusOK, resp)
}

// GetRepositoryHealth godoc
// @Summary Get repository health
// @Description Score the stored history of a repository
// @Tags repository
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Success 200 {object} HealthResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{repo}/health [get]
func (h *Handler) GetRepositoryHealth(c *gin.Context) {
	repo, err := repository(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	commits, err := h.store.AllCommits(c.Request.Context(), repo)
	if err != nil {
		h.respondWithError(c, apperrors.NewInternalError("failed to load commits", err))
		return
	}
	if len(commits) == 0 {
		h.respondWithError(c, notSynced(repo))
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Repository: repo,
		Assessment: h.scorer.Score(commits),
		Trend:      scoring.Trend(commits),
	})
}

// GetRepositoryDistribution godoc
// @Summary Get commit intent distribution
// @Description Count stored commits per intent category. Every category is present.
// @Tags repository
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Success 200 {object} DistributionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{repo}/distribution [get]
func (h *Handler) GetRepositoryDistribution(c *gin.Context) {
	repo, err := repository(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	counts, err := h.store.CategoryDistribution(c.Request.Context(), repo)
	if err != nil {
		h.respondWithError(c, apperrors.NewInternalError("failed to get distribution", err))
		return
	}

	resp := DistributionResponse{
		Repository:   repo,
		Distribution: make(map[string]int, len(classifier.Categories())),
	}
	for _, category := range classifier.Categories() {
		resp.Distribution[string(category)] = counts[category]
		resp.Total += counts[category]
	}
	c.JSON(http.StatusOK, resp)
}

// GetRepositoryInsights godoc
// @Summary Get repository insights
// @Description Descriptive statistics of the stored history
// @Tags repository
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Success 200 {object} models.Insights
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{repo}/insights [get]
func (h *Handler) GetRepositoryInsights(c *gin.Context) {
	repo, err := repository(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	commits, err := h.store.AllCommits(c.Request.Context(), repo)
	if err != nil {
		h.respondWithError(c, apperrors.NewInternalError("failed to load commits", err))
		return
	}
	if len(commits) == 0 {
		h.respondWithError(c, notSynced(repo))
		return
	}

	c.JSON(http.StatusOK, scoring.BuildInsights(commits))
}

// GetRepositoryAuthors godoc
// @Summary Get top commit authors
// @Tags repository
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Param limit query int false "Number of authors to return" default(10)
// @Success 200 {object} AuthorListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{repo}/authors [get]
func (h *Handler) GetRepositoryAuthors(c *gin.Context) {
	repo, err := repository(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	limit, err := intQuery(c, "limit", defaultAuthorLimit, 1, maxLimit)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	authors, err := h.store.GetTopCommitAuthors(c.Request.Context(), repo, limit)
	if err != nil {
		h.respondWithError(c, apperrors.NewInternalError("failed to get top authors", err))
		return
	}

	resp := AuthorListResponse{Data: authors}
	resp.Metadata.Repository = repo
	resp.Metadata.Limit = limit
	c.JSON(http.StatusOK, resp)
}

// SyncRepository godoc
// @Summary Sync a repository
// @Description Fetch new commits, persist them and rescore the repository. Blocks until the sync finishes.
// @Tags sync
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Success 200 {object} SyncResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{repo}/sync [post]
func (h *Handler) SyncRepository(c *gin.Context) {
	repo, err := repository(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	report, err := h.syncer.Sync(c.Request.Context(), repo)
	if err != nil && !apperrors.IsPartialSync(err) {
		h.respondWithError(c, err)
		return
	}

	resp := SyncResponse{SyncReport: report}
	if err != nil {
		resp.Partial = true
		resp.Warning = err.Error()
		h.logger.WithError(err).WithField("repository", repo).Warn("Sync completed with partial data")
	}
	c.JSON(http.StatusOK, resp)
}

// GetSyncStatus godoc
// @Summary Get repository sync status
// @Description The running sync if there is one, otherwise the latest recorded run
// @Tags sync
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Success 200 {object} models.SyncRun
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{repo}/sync-status [get]
func (h *Handler) GetSyncStatus(c *gin.Context) {
	repo, err := repository(c)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	run, err := h.syncer.Status(c.Request.Context(), repo)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func notSynced(repo string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("no commits stored for %s, run a sync first", repo), nil)
}

// statusCode maps an error onto an HTTP status
func statusCode(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrRateLimit:
		return http.StatusTooManyRequests
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondWithError(c *gin.Context, err error) {
	code := statusCode(err)
	entry := h.logger.WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"status": code,
	}).WithError(err)
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// intQuery parses an integer query parameter. hi < 0 means unbounded.
func intQuery(c *gin.Context, name string, def, lo, hi int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || (hi >= 0 && v > hi) {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid %s parameter", name), err)
	}
	return v, nil
}

func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid %s parameter (use RFC3339 format)", name), err)
	}
	t = t.UTC()
	return &t, nil
}

func dateRange(c *gin.Context) (since, until *time.Time, err error) {
	if since, err = timeQuery(c, "since"); err != nil {
		return nil, nil, err
	}
	if until, err = timeQuery(c, "until"); err != nil {
		return nil, nil, err
	}
	if since != nil && until != nil && until.Before(*since) {
		return nil, nil, apperrors.NewValidationError("until must not be before since", nil)
	}
	return since, until, nil
}
