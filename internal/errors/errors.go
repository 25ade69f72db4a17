package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrNotFound     ErrorType = "NOT_FOUND"
	ErrRateLimit    ErrorType = "RATE_LIMIT"
	ErrInvalidInput ErrorType = "INVALID_INPUT"
	ErrInternal     ErrorType = "INTERNAL"
	ErrUnauthorized ErrorType = "UNAUTHORIZED"
	ErrTransient    ErrorType = "TRANSIENT"
)

// Typed is implemented by errors that map onto the application taxonomy
type Typed interface {
	error
	AppType() ErrorType
}

// AppError represents an application error
type AppError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// AppType implements Typed
func (e *AppError) AppType() ErrorType {
	return e.Type
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// TypeOf returns the taxonomy type of the first typed error in err's chain,
// or ErrInternal when there is none.
func TypeOf(err error) ErrorType {
	var typed Typed
	if stderrors.As(err, &typed) {
		return typed.AppType()
	}
	return ErrInternal
}

func is(err error, t ErrorType) bool {
	var typed Typed
	if stderrors.As(err, &typed) {
		return typed.AppType() == t
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return is(err, ErrNotFound)
}

// IsRateLimit checks if the error is a rate limit error
func IsRateLimit(err error) bool {
	return is(err, ErrRateLimit)
}

// IsUnauthorized checks if the error is an authentication error
func IsUnauthorized(err error) bool {
	return is(err, ErrUnauthorized)
}

// IsTransient checks if the error is a network or upstream 5xx failure
func IsTransient(err error) bool {
	return is(err, ErrTransient)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return is(err, ErrInvalidInput)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return New(ErrNotFound, message, err)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return New(ErrInvalidInput, message, err)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}

// PartialSyncError is returned alongside a usable sync report when fetching
// stopped early. Everything fetched before the failure was persisted and scored.
type PartialSyncError struct {
	Repository string
	Fetched    int
	Err        error
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("partial sync of %s (%d commits fetched): %v", e.Repository, e.Fetched, e.Err)
}

func (e *PartialSyncError) Unwrap() error {
	return e.Err
}

// NewPartialSyncError creates a new PartialSyncError
func NewPartialSyncError(repository string, fetched int, err error) *PartialSyncError {
	return &PartialSyncError{
		Repository: repository,
		Fetched:    fetched,
		Err:        err,
	}
}

// IsPartialSync reports whether err carries a PartialSyncError
func IsPartialSync(err error) bool {
	var partial *PartialSyncError
	return stderrors.As(err, &partial)
}
