package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Kamar-Folarin/commit-health/internal/errors"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *GitHubClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]ClientOption{
		WithBaseURL(server.URL),
		WithRetryConfig(3, time.Millisecond, 10*time.Millisecond),
		WithPageDelay(0),
	}, opts...)
	return NewGitHubClient("test-token", testLogger(), opts...)
}

type fakeCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Date  string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string `json:"html_url"`
	Stats   *struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
		Total     int `json:"total"`
	} `json:"stats,omitempty"`
}

func newFakeCommit(i int) fakeCommit {
	var c fakeCommit
	c.SHA = fmt.Sprintf("sha%04d", i)
	c.Commit.Message = fmt.Sprintf("feat: change %d", i)
	c.Commit.Author.Name = fmt.Sprintf("dev-%d", i%4)
	c.Commit.Author.Email = fmt.Sprintf("dev-%d@example.com", i%4)
	c.Commit.Author.Date = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour).Format(time.RFC3339)
	c.HTMLURL = "https://github.com/test-owner/test-repo/commit/" + c.SHA
	return c
}

// pagedHandler serves total commits in pages of per_page
func pagedHandler(t *testing.T, total int, requests *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		assert.Equal(t, "/repos/test-owner/test-repo/commits", r.URL.Path)

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		start := (page - 1) * perPage
		end := min(start+perPage, total)

		commits := []fakeCommit{}
		for i := start; i < end; i++ {
			commits = append(commits, newFakeCommit(i))
		}
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(5000-page))
		json.NewEncoder(w).Encode(commits)
	}
}

func TestGitHubClient_FetchCommits(t *testing.T) {
	ctx := context.Background()

	t.Run("maps commit fields", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			if r.URL.Query().Get("page") != "1" {
				w.Write([]byte(`[]`))
				return
			}
			w.Write([]byte(`[
				{
					"sha": "abc123",
					"commit": {
						"message": "Test commit",
						"author": {
							"name": " Test Author ",
							"email": "test@example.com",
							"date": "2020-01-01T05:00:00+05:00"
						}
					},
					"html_url": "https://github.com/test-owner/test-repo/commit/abc123"
				}
			]`))
		})

		commits, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 500)
		require.NoError(t, err)
		require.Len(t, commits, 1)
		c := commits[0]
		assert.Equal(t, "abc123", c.SHA)
		assert.Equal(t, "test-owner/test-repo", c.Repository)
		assert.Equal(t, "Test commit", c.Message)
		assert.Equal(t, "Test Author", c.AuthorName)
		assert.Equal(t, "test@example.com", c.AuthorEmail)
		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), c.CommittedAt)
		assert.Equal(t, "https://github.com/test-owner/test-repo/commit/abc123", c.CommitURL)
		assert.Zero(t, c.Additions)
		assert.Zero(t, c.Deletions)
	})

	t.Run("paginates until empty page", func(t *testing.T) {
		var requests int32
		client := setupTestClient(t, pagedHandler(t, 250, &requests))

		commits, err := client.FetchCommits(ctx, "https://github.com/test-owner/test-repo", nil, 500)
		require.NoError(t, err)
		assert.Len(t, commits, 250)
		assert.Equal(t, "sha0000", commits[0].SHA)
		assert.Equal(t, "sha0249", commits[249].SHA)
		assert.EqualValues(t, 4, atomic.LoadInt32(&requests))
		assert.Equal(t, 4996, client.RateLimit().Remaining)
	})

	t.Run("truncates to limit", func(t *testing.T) {
		var requests int32
		client := setupTestClient(t, pagedHandler(t, 1000, &requests))

		commits, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 150)
		require.NoError(t, err)
		assert.Len(t, commits, 150)
		assert.EqualValues(t, 2, atomic.LoadInt32(&requests))
	})

	t.Run("sends since as RFC3339 UTC", func(t *testing.T) {
		since := time.Date(2024, 3, 1, 7, 0, 0, 0, time.FixedZone("X", 2*3600))
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2024-03-01T05:00:00Z", r.URL.Query().Get("since"))
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			w.Write([]byte(`[]`))
		})

		commits, err := client.FetchCommits(ctx, "test-owner/test-repo", &since, 500)
		require.NoError(t, err)
		assert.Empty(t, commits)
	})

	t.Run("invalid input", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := client.FetchCommits(ctx, "not-a-repo", nil, 10)
		assert.IsType(t, &ValidationError{}, err)
		assert.True(t, apperrors.IsInvalidInput(err))

		_, err = client.FetchCommits(ctx, "test-owner/test-repo", nil, 0)
		assert.IsType(t, &ValidationError{}, err)
	})
}

func TestGitHubClient_ErrorHandling(t *testing.T) {
	ctx := context.Background()

	t.Run("repository not found", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
		})

		commits, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 10)
		assert.Empty(t, commits)
		var notFound *RepositoryNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "test-owner", notFound.Owner)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("unauthorized", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Bad credentials"}`))
		})

		_, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 10)
		assert.IsType(t, &UnauthorizedError{}, err)
		assert.True(t, apperrors.IsUnauthorized(err))
		assert.Contains(t, err.Error(), "Bad credentials")
	})

	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests} {
		t.Run(fmt.Sprintf("rate limit %d is not retried", status), func(t *testing.T) {
			var requests int32
			client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&requests, 1)
				w.Header().Set("X-RateLimit-Limit", "5000")
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", "1234567890")
				w.WriteHeader(status)
			})

			_, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 10)
			var limited *RateLimitError
			require.ErrorAs(t, err, &limited)
			assert.Equal(t, 5000, limited.Limit)
			assert.Equal(t, 0, limited.Remaining)
			assert.Equal(t, time.Unix(1234567890, 0), limited.ResetTime)
			assert.True(t, apperrors.IsRateLimit(err))
			assert.EqualValues(t, 1, atomic.LoadInt32(&requests))
		})
	}

	t.Run("server error with retry", func(t *testing.T) {
		var attempts int32
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`[]`))
		})

		commits, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 10)
		require.NoError(t, err)
		assert.Empty(t, commits)
		assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
	})

	t.Run("persistent server error is transient", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 10)
		var ghErr *GitHubError
		require.ErrorAs(t, err, &ghErr)
		assert.Equal(t, http.StatusBadGateway, ghErr.StatusCode)
		assert.True(t, apperrors.IsTransient(err))
	})

	t.Run("network error", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		client := NewGitHubClient("", testLogger(),
			WithBaseURL(server.URL),
			WithRetryConfig(2, time.Millisecond, time.Millisecond))

		_, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 10)
		var ghErr *GitHubError
		require.ErrorAs(t, err, &ghErr)
		assert.True(t, ghErr.Transient())
	})

	t.Run("malformed response", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`invalid json`))
		})

		_, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 10)
		assert.IsType(t, &GitHubError{}, err)
		assert.False(t, apperrors.IsTransient(err))
	})

	t.Run("failure on a later page returns partial results", func(t *testing.T) {
		var requests int32
		paged := pagedHandler(t, 1000, &requests)
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "3" {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			paged(w, r)
		})

		commits, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 500)
		assert.Len(t, commits, 200)
		assert.True(t, apperrors.IsRateLimit(err))
	})
}

func TestGitHubClient_CommitStats(t *testing.T) {
	ctx := context.Background()

	t.Run("additions and deletions stay independent", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/repos/test-owner/test-repo/commits":
				if r.URL.Query().Get("page") == "1" {
					json.NewEncoder(w).Encode([]fakeCommit{newFakeCommit(0), newFakeCommit(1)})
					return
				}
				w.Write([]byte(`[]`))
			case "/repos/test-owner/test-repo/commits/sha0000":
				w.Write([]byte(`{"sha":"sha0000","commit":{"message":"x","author":{"name":"a","date":"2025-01-01T00:00:00Z"}},"stats":{"additions":120,"deletions":30,"total":150}}`))
			case "/repos/test-owner/test-repo/commits/sha0001":
				w.WriteHeader(http.StatusInternalServerError)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}, WithCommitStats(true), WithRetryConfig(1, time.Millisecond, time.Millisecond))

		commits, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 10)
		require.NoError(t, err)
		require.Len(t, commits, 2)

		assert.Equal(t, 120, commits[0].Additions)
		assert.Equal(t, 30, commits[0].Deletions)
		assert.Equal(t, 150, commits[0].Churn())

		// failed detail fetch keeps zero counts
		assert.Zero(t, commits[1].Additions)
		assert.Zero(t, commits[1].Deletions)
	})

	t.Run("GetCommit", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/test-owner/test-repo/commits/abc", r.URL.Path)
			w.Write([]byte(`{"sha":"abc","commit":{"message":"fix: x","author":{"name":"a","date":"2025-01-01T00:00:00Z"}},"stats":{"additions":1,"deletions":9,"total":10}}`))
		})

		c, err := client.GetCommit(ctx, "test-owner/test-repo", "abc")
		require.NoError(t, err)
		assert.Equal(t, 1, c.Additions)
		assert.Equal(t, 9, c.Deletions)
	})
}

func TestGitHubClient_PageDelay(t *testing.T) {
	var requests int32
	server := httptest.NewServer(pagedHandler(t, 250, &requests))
	defer server.Close()

	client := NewGitHubClient("", testLogger(), WithBaseURL(server.URL), WithPageDelay(20*time.Millisecond))

	start := time.Now()
	_, err := client.FetchCommits(context.Background(), "test-owner/test-repo", nil, 500)
	require.NoError(t, err)
	// four requests, three pauses
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestGitHubClient_ContextCancelled(t *testing.T) {
	var requests int32
	client := setupTestClient(t, pagedHandler(t, 1000, &requests), WithPageDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	commits, err := client.FetchCommits(ctx, "test-owner/test-repo", nil, 500)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, commits, 100)
}
