package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/Kamar-Folarin/commit-health/internal/models"
	"github.com/Kamar-Folarin/commit-health/internal/utils"
)

const (
	DefaultBaseURL = "https://api.github.com"

	perPage          = 100
	defaultPageDelay = 100 * time.Millisecond
)

// RateLimitInfo holds information about GitHub API rate limits
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetTime time.Time
	// RetryAfter is set from the Retry-After header of secondary limits
	RetryAfter time.Duration
}

// GitHubClient fetches commit history from the GitHub REST API
type GitHubClient struct {
	client  *http.Client
	baseURL string
	logger  *logrus.Logger

	mu            sync.Mutex
	rateLimitInfo RateLimitInfo

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	// pageDelay is waited between consecutive requests of one fetch
	pageDelay  time.Duration
	fetchStats bool
}

// ClientOption allows configuring the GitHub client
type ClientOption func(*GitHubClient)

// WithRetryConfig configures retry behavior for transient failures
func WithRetryConfig(maxRetries int, initialBackoff, maxBackoff time.Duration) ClientOption {
	return func(c *GitHubClient) {
		c.maxRetries = maxRetries
		c.initialBackoff = initialBackoff
		c.maxBackoff = maxBackoff
	}
}

// WithBaseURL points the client at a GitHub Enterprise or test server
func WithBaseURL(baseURL string) ClientOption {
	return func(c *GitHubClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithCommitStats makes the client fetch every commit individually to fill
// in additions and deletions. This costs one request per commit.
func WithCommitStats(enabled bool) ClientOption {
	return func(c *GitHubClient) {
		c.fetchStats = enabled
	}
}

// WithPageDelay overrides the pause between consecutive page requests
func WithPageDelay(d time.Duration) ClientOption {
	return func(c *GitHubClient) {
		c.pageDelay = d
	}
}

// NewGitHubClient creates a new GitHub client with the given token and options.
// An empty token makes unauthenticated requests.
func NewGitHubClient(token string, logger *logrus.Logger, opts ...ClientOption) *GitHubClient {
	httpClient := &http.Client{}
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	httpClient.Timeout = 120 * time.Second

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	client := &GitHubClient{
		client:         httpClient,
		baseURL:        DefaultBaseURL,
		logger:         logger,
		maxRetries:     3,
		initialBackoff: time.Second,
		maxBackoff:     time.Minute,
		pageDelay:      defaultPageDelay,
	}

	for _, opt := range opts {
		opt(client)
	}
	if client.maxRetries < 1 {
		client.maxRetries = 1
	}

	return client
}

// RateLimit returns the rate limit state seen on the latest response
func (c *GitHubClient) RateLimit() RateLimitInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimitInfo
}

// updateRateLimitInfo updates the rate limit information from response headers
func (c *GitHubClient) updateRateLimitInfo(resp *http.Response) RateLimitInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limit := resp.Header.Get("X-RateLimit-Limit"); limit != "" {
		c.rateLimitInfo.Limit, _ = strconv.Atoi(limit)
	}
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		c.rateLimitInfo.Remaining, _ = strconv.Atoi(remaining)
	}
	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if resetTime, err := strconv.ParseInt(reset, 10, 64); err == nil {
			c.rateLimitInfo.ResetTime = time.Unix(resetTime, 0)
		}
	}

	c.rateLimitInfo.RetryAfter = 0
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if retrySeconds, err := strconv.ParseInt(retryAfter, 10, 64); err == nil {
			c.rateLimitInfo.RetryAfter = time.Duration(retrySeconds) * time.Second
		}
	}

	return c.rateLimitInfo
}

// doRequestWithBackoff performs a GET request, retrying network failures and
// 5xx responses with exponential backoff. Rate-limit, auth and not-found
// responses are returned immediately.
func (c *GitHubClient) doRequestWithBackoff(ctx context.Context, reqURL string, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = time.Duration(math.Min(float64(backoff*2), float64(c.maxBackoff)))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = NewGitHubError(0, "request failed", err)
			c.logger.Warnf("Request attempt %d failed: %v", attempt+1, err)
			continue
		}

		info := c.updateRateLimitInfo(resp)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = NewGitHubError(0, "failed to read response body", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if result != nil {
				if err := json.Unmarshal(body, result); err != nil {
					return NewGitHubError(resp.StatusCode, "failed to decode response", err)
				}
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return errNotFound
		case resp.StatusCode == http.StatusUnauthorized:
			return NewUnauthorizedError(githubMessage(body, "bad credentials"))
		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
			c.logger.WithFields(logrus.Fields{
				"status":      resp.StatusCode,
				"limit":       info.Limit,
				"remaining":   info.Remaining,
				"reset":       info.ResetTime,
				"retry_after": info.RetryAfter,
			}).Warn("GitHub API rate limit exceeded")
			return NewRateLimitError(resp.StatusCode, info.ResetTime, info.Limit, info.Remaining)
		case resp.StatusCode >= 500:
			lastErr = NewGitHubError(resp.StatusCode, githubMessage(body, http.StatusText(resp.StatusCode)), nil)
			c.logger.Warnf("Request attempt %d failed with status %d", attempt+1, resp.StatusCode)
			continue
		default:
			return NewGitHubError(resp.StatusCode, githubMessage(body, http.StatusText(resp.StatusCode)), nil)
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// errNotFound is translated into a RepositoryNotFoundError by callers that
// know the repository
var errNotFound = NewGitHubError(http.StatusNotFound, "not found", nil)

func (c *GitHubClient) get(ctx context.Context, owner, name, reqURL string, result interface{}) error {
	err := c.doRequestWithBackoff(ctx, reqURL, result)
	if errors.Is(err, errNotFound) {
		return NewRepositoryNotFoundError(owner, name)
	}
	return err
}

// FetchCommits returns up to limit commits of repository, newest first,
// optionally restricted to commits at or after since. Pages are requested
// one after another. When a page fails the commits gathered so far are
// returned together with the error.
func (c *GitHubClient) FetchCommits(ctx context.Context, repository string, since *time.Time, limit int) ([]*models.Commit, error) {
	owner, name, fullName, err := utils.ParseRepository(repository)
	if err != nil {
		return nil, NewValidationError("repository", repository)
	}
	if limit <= 0 {
		return nil, NewValidationError("limit", strconv.Itoa(limit))
	}

	logger := c.logger.WithFields(logrus.Fields{
		"repository": fullName,
		"since":      since,
		"limit":      limit,
	})
	logger.Info("Starting to fetch commits from GitHub API")

	var result []*models.Commit
	var fetchErr error
	for page := 1; len(result) < limit; page++ {
		if page > 1 {
			if err := sleep(ctx, c.pageDelay); err != nil {
				fetchErr = err
				break
			}
		}

		batch, err := c.getCommitsPage(ctx, owner, name, since, page)
		if err != nil {
			logger.WithError(err).WithField("page", page).Error("Failed to fetch commits page")
			fetchErr = err
			break
		}
		if len(batch) == 0 {
			logger.WithField("page", page).Debug("No more commits to fetch")
			break
		}

		for _, a := range batch {
			result = append(result, a.toModel(fullName))
		}

		logger.WithFields(logrus.Fields{
			"page":           page,
			"commits_found":  len(batch),
			"total_commits":  len(result),
			"rate_remaining": c.RateLimit().Remaining,
		}).Debug("Fetched commits page")
	}

	if len(result) > limit {
		result = result[:limit]
	}

	if c.fetchStats && len(result) > 0 && ctx.Err() == nil {
		c.fillStats(ctx, owner, name, result)
	}

	logger.WithFields(logrus.Fields{
		"total_commits": len(result),
		"partial":       fetchErr != nil,
	}).Info("Completed fetching commits from GitHub API")

	return result, fetchErr
}

func (c *GitHubClient) getCommitsPage(ctx context.Context, owner, name string, since *time.Time, page int) ([]apiCommit, error) {
	query := url.Values{}
	if since != nil {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	reqURL := fmt.Sprintf("%s/repos/%s/%s/commits?%s", c.baseURL, url.PathEscape(owner), url.PathEscape(name), query.Encode())

	var commits []apiCommit
	if err := c.get(ctx, owner, name, reqURL, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

// GetCommit fetches a single commit including its line stats
func (c *GitHubClient) GetCommit(ctx context.Context, repository, sha string) (*models.Commit, error) {
	owner, name, fullName, err := utils.ParseRepository(repository)
	if err != nil {
		return nil, NewValidationError("repository", repository)
	}
	if sha == "" {
		return nil, NewValidationError("sha", "cannot be empty")
	}

	detail, err := c.getCommitDetail(ctx, owner, name, sha)
	if err != nil {
		return nil, err
	}
	return detail.toModel(fullName), nil
}

func (c *GitHubClient) getCommitDetail(ctx context.Context, owner, name, sha string) (*apiCommit, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(name), url.PathEscape(sha))

	var detail apiCommit
	if err := c.get(ctx, owner, name, reqURL, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// fillStats loads line counts per commit. Failures leave the counts at 0.
func (c *GitHubClient) fillStats(ctx context.Context, owner, name string, commits []*models.Commit) {
	for i, commit := range commits {
		if i > 0 {
			if err := sleep(ctx, c.pageDelay); err != nil {
				return
			}
		}

		detail, err := c.getCommitDetail(ctx, owner, name, commit.SHA)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"sha":   commit.SHA,
				"error": err,
			}).Warn("Failed to fetch commit stats, keeping zero line counts")
			var limited *RateLimitError
			if errors.As(err, &limited) {
				return
			}
			continue
		}
		detail.applyStats(commit)
	}
}

// githubMessage extracts the "message" field of a GitHub error body
func githubMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
