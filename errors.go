package codebook

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrFatalIO reports that the destination artifact could not be written.
	ErrFatalIO = errors.New("fatal i/o")
	// ErrCancelled reports that the run observed cancellation.
	ErrCancelled = errors.New("cancelled")
)

// Cancelled wraps cause so that it matches ErrCancelled.
func Cancelled(cause error) error {
	if cause == nil {
		cause = context.Canceled
	}
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// FatalIO wraps a destination failure so that it matches ErrFatalIO.
func FatalIO(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrFatalIO, op, cause)
}

// CheckContext returns a cancellation error once ctx is done.
func CheckContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return Cancelled(err)
	}
	return nil
}
