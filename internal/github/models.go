package github

import (
	"strings"
	"time"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

// apiCommit is one element of GET /repos/{owner}/{repo}/commits, also the
// body of GET /repos/{owner}/{repo}/commits/{sha}
type apiCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string    `json:"html_url"`
	Stats   *apiStats `json:"stats,omitempty"`
}

// apiStats is only present on the single-commit endpoint
type apiStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Total     int `json:"total"`
}

func (a *apiCommit) toModel(repository string) *models.Commit {
	c := &models.Commit{
		SHA:         a.SHA,
		Repository:  repository,
		AuthorName:  strings.TrimSpace(a.Commit.Author.Name),
		AuthorEmail: a.Commit.Author.Email,
		CommittedAt: a.Commit.Author.Date.UTC().Truncate(time.Second),
		Message:     a.Commit.Message,
		CommitURL:   a.HTMLURL,
	}
	a.applyStats(c)
	return c
}

// applyStats copies line counts; additions and deletions are separate fields
// on both sides and must never be cross-assigned
func (a *apiCommit) applyStats(c *models.Commit) {
	if a.Stats == nil {
		return
	}
	c.Additions = max(a.Stats.Additions, 0)
	c.Deletions = max(a.Stats.Deletions, 0)
}
