// Package corerr defines the small closed set of error kinds nikcli's core
// components surface, matching the taxonomy of kinds (not type names) that
// the design calls for: Validation, PermissionDenied, NotFound,
// ProviderError, Timeout, Io, Cancelled, Internal, NotImplemented.
package corerr

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel kinds. Use errors.Is against these, or errors.As against
// ProviderError for the recoverable flag.
var (
	ErrValidation       = errors.New("validation")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrTimeout          = errors.New("timeout")
	ErrIo               = errors.New("io")
	ErrCancelled        = errors.New("cancelled")
	ErrInternal         = errors.New("internal")
	ErrNotImplemented   = errors.New("not implemented")
)

// ProviderError wraps an upstream provider failure and records whether it
// is recoverable (retry-eligible) or not.
type ProviderError struct {
	Recoverable bool
	Cause       error
}

func (e *ProviderError) Error() string {
	if e.Cause == nil {
		return "provider error"
	}
	return fmt.Sprintf("provider error: %v", e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// NewProviderError constructs a ProviderError, classifying recoverability
// from common transient-failure signatures when the caller doesn't already
// know (upstream SDKs rarely expose a clean "retryable" flag).
func NewProviderError(cause error, recoverable bool) *ProviderError {
	return &ProviderError{Recoverable: recoverable, Cause: cause}
}

// Validation wraps err as a Validation-kind error.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFound wraps err as a NotFound-kind error.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// PermissionDenied wraps err as a PermissionDenied-kind error.
func PermissionDenied(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrPermissionDenied}, args...)...)
}

// Io wraps an underlying disk/subprocess error as Io-kind.
func Io(cause error) error {
	return fmt.Errorf("%w: %v", ErrIo, cause)
}

// Timeout wraps cause as a Timeout-kind error, for a tool or provider call
// that exceeded its deadline.
func Timeout(cause error) error {
	return fmt.Errorf("%w: %v", ErrTimeout, cause)
}

// NotImplemented wraps err as a NotImplemented-kind error.
func NotImplemented(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotImplemented}, args...)...)
}

// Internal wraps err as an Internal-kind error.
func Internal(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInternal}, args...)...)
}

// IsCancelled reports whether err represents cooperative cancellation —
// either context.Canceled/DeadlineExceeded or our own sentinel.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrCancelled)
}

// IsRecoverable reports whether err is a ProviderError marked recoverable.
func IsRecoverable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Recoverable
	}
	return false
}
