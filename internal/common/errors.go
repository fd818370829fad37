// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrAlreadyApplied = errors.New("already applied")

	// Pipeline errors.
	ErrMetadataProbe        = errors.New("metadata probe failed")
	ErrUnsupportedFile      = errors.New("unsupported file")
	ErrNoExtractableContent = errors.New("no extractable content")
	ErrModelInvocation      = errors.New("model invocation failed")
	ErrConfirmationDeclined = errors.New("confirmation declined")
	ErrNonInteractive       = errors.New("no interactive terminal")
	ErrCleanup              = errors.New("cleanup failed")
	ErrLogAppend            = errors.New("rename log append failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable reports whether err is worth another attempt. Errors are
// transient unless marked otherwise with RetryableError or caused by
// cancellation; rate limits and deadlines always retry.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return true
}
