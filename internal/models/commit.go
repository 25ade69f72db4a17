package models

import "time"

// Category is the intent label assigned to a commit at ingestion time
type Category string

const (
	CategoryFeature  Category = "Feature"
	CategoryBugfix   Category = "Bugfix"
	CategoryRefactor Category = "Refactor"
	CategoryDocs     Category = "Docs"
	CategoryTest     Category = "Test"
	CategoryBuild    Category = "Build"
	CategoryChore    Category = "Chore"
	CategoryOther    Category = "Other"
)

// Commit is one VCS commit as observed for a repository.
// (Repository, SHA) is unique in the store.
type Commit struct {
	SHA         string    `json:"sha" yaml:"sha"`
	Repository  string    `json:"repository" yaml:"repository"`
	AuthorName  string    `json:"author_name" yaml:"author_name"`
	AuthorEmail string    `json:"author_email,omitempty" yaml:"author_email,omitempty"`
	CommittedAt time.Time `json:"committed_at" yaml:"committed_at"`
	Message     string    `json:"message" yaml:"message"`
	Additions   int       `json:"additions" yaml:"additions"`
	Deletions   int       `json:"deletions" yaml:"deletions"`
	Category    Category  `json:"category" yaml:"category"`
	CommitURL   string    `json:"html_url,omitempty" yaml:"html_url,omitempty"`
}

// Churn returns additions plus deletions
func (c *Commit) Churn() int {
	return c.Additions + c.Deletions
}

type AuthorStats struct {
	Name        string `json:"name" yaml:"name"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	CommitCount int    `json:"commit_count" yaml:"commit_count"`
}
