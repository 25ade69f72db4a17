package github

import (
	"fmt"
	"time"

	apperrors "github.com/Kamar-Folarin/commit-health/internal/errors"
)

// GitHubError is any non-success response or transport failure that is not
// covered by a more specific error type
type GitHubError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GitHubError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GitHub API error (status %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("GitHub API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *GitHubError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the request later might succeed
func (e *GitHubError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

func (e *GitHubError) AppType() apperrors.ErrorType {
	if e.Transient() {
		return apperrors.ErrTransient
	}
	return apperrors.ErrInternal
}

// RateLimitError represents when we hit GitHub's rate limits
type RateLimitError struct {
	StatusCode int
	ResetTime  time.Time
	Limit      int
	Remaining  int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded. Reset at %v. Limit: %d, Remaining: %d",
		e.ResetTime, e.Limit, e.Remaining)
}

func (e *RateLimitError) AppType() apperrors.ErrorType {
	return apperrors.ErrRateLimit
}

// UnauthorizedError is returned when the token is missing or rejected
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("GitHub API unauthorized: %s", e.Message)
}

func (e *UnauthorizedError) AppType() apperrors.ErrorType {
	return apperrors.ErrUnauthorized
}

// ValidationError represents invalid input to GitHub client methods
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: invalid %s: %s", e.Field, e.Value)
}

func (e *ValidationError) AppType() apperrors.ErrorType {
	return apperrors.ErrInvalidInput
}

// RepositoryNotFoundError represents when a repository cannot be found
type RepositoryNotFoundError struct {
	Owner string
	Name  string
}

func (e *RepositoryNotFoundError) Error() string {
	return fmt.Sprintf("repository not found: %s/%s (check spelling)", e.Owner, e.Name)
}

func (e *RepositoryNotFoundError) AppType() apperrors.ErrorType {
	return apperrors.ErrNotFound
}

// NewGitHubError creates a new GitHubError with the given status code and message
func NewGitHubError(statusCode int, message string, err error) error {
	return &GitHubError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// NewRateLimitError creates a new RateLimitError
func NewRateLimitError(statusCode int, resetTime time.Time, limit, remaining int) error {
	return &RateLimitError{
		StatusCode: statusCode,
		ResetTime:  resetTime,
		Limit:      limit,
		Remaining:  remaining,
	}
}

// NewUnauthorizedError creates a new UnauthorizedError
func NewUnauthorizedError(message string) error {
	return &UnauthorizedError{Message: message}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, value string) error {
	return &ValidationError{
		Field: field,
		Value: value,
	}
}

// NewRepositoryNotFoundError creates a new RepositoryNotFoundError
func NewRepositoryNotFoundError(owner, name string) error {
	return &RepositoryNotFoundError{
		Owner: owner,
		Name:  name,
	}
}
