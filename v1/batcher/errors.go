package batcher

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned when a submission would push the queue past
	// Config.MaxQueued. Nothing is enqueued.
	ErrQueueFull = errors.New("batcher: queue full")

	// ErrPermanentFailure is returned once retryable failures have pushed the
	// backoff past its ceiling. The engine does not recover from it.
	ErrPermanentFailure = errors.New("batcher: permanently failed")

	// ErrBatchFailed is wrapped by every *BatchError.
	ErrBatchFailed = errors.New("batcher: batch failed")

	// ErrResultMismatch means the collaborator returned a different number of
	// results than it was given items.
	ErrResultMismatch = errors.New("batcher: result count does not match batch size")

	// ErrClosed is returned for work submitted to, or still queued in, an
	// engine that has been shut down.
	ErrClosed = errors.New("batcher: engine closed")

	// ErrInvalidConfig is returned by New for a Config that fails Validate or a
	// nil BatchFunc.
	ErrInvalidConfig = errors.New("batcher: invalid config")
)

// BatchError is the per-item error for a batch that failed with a
// non-retryable error.
type BatchError struct {
	BatchID string
	Index   int
	Payload string // leading characters of the item, for diagnostics
	Cause   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batcher: batch %s item %d (%q) failed: %v", e.BatchID, e.Index, e.Payload, e.Cause)
}

func (e *BatchError) Unwrap() []error {
	return []error{ErrBatchFailed, e.Cause}
}

type permanentError struct {
	cause error
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("%s after repeated retryable errors: %v", ErrPermanentFailure, e.cause)
}

func (e *permanentError) Unwrap() []error {
	return []error{ErrPermanentFailure, e.cause}
}

func queueFullError(depth int) error {
	return fmt.Errorf("%w: %d items already queued", ErrQueueFull, depth)
}

// IsRetryable reports whether err, or any error it wraps, declares itself
// retryable through a Retryable() bool method.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// IsQueueFull reports whether err is a backpressure rejection.
func IsQueueFull(err error) bool {
	return errors.Is(err, ErrQueueFull)
}

// IsPermanentFailure reports whether err comes from a latched engine.
func IsPermanentFailure(err error) bool {
	return errors.Is(err, ErrPermanentFailure)
}

// IsClosed reports whether err comes from a shut down engine.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
