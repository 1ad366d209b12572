package main

import (
	"context"
	"errors"

	"github.com/nikcli-go/nikcli/internal/corerr"
)

// Exit codes per spec.md §6.
const (
	exitSuccess     = 0
	exitUserError   = 1
	exitToolFailure = 2
	exitInterrupted = 130
)

// exitCodeFor classifies an error returned from a subcommand's RunE into
// one of the four documented exit codes.
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, corerr.ErrCancelled) {
		return exitInterrupted
	}
	if errors.Is(err, corerr.ErrValidation) || errors.Is(err, corerr.ErrPermissionDenied) || errors.Is(err, corerr.ErrNotFound) {
		return exitUserError
	}

	var providerErr *corerr.ProviderError
	if errors.As(err, &providerErr) {
		return exitToolFailure
	}
	if errors.Is(err, corerr.ErrIo) || errors.Is(err, corerr.ErrInternal) || errors.Is(err, corerr.ErrNotImplemented) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, corerr.ErrTimeout) {
		return exitToolFailure
	}
	return exitUserError
}
