package batcher

import (
	"fmt"
	"time"
)

const (
	// DefaultBatchSize is the maximum number of items sent in one call.
	DefaultBatchSize = 400

	// DefaultFlushInterval is the coalescing window between batches.
	DefaultFlushInterval = 510 * time.Millisecond

	// DefaultMaxQueued is the queue ceiling enforced at submission.
	DefaultMaxQueued = 100_000

	// DefaultInitialBackoff is the first delay after a retryable failure.
	DefaultInitialBackoff = time.Second

	// DefaultBackoffCeiling is the largest delay the engine will wait before it
	// gives up and latches failed.
	DefaultBackoffCeiling = 8 * time.Second
)

// Config controls batching, coalescing and backoff for one Engine.
type Config struct {
	// Name identifies the engine in logs, spans and metrics.
	Name string

	// BatchSize is the maximum number of items per collaborator call.
	BatchSize int

	// FlushInterval is the coalescing window. Items submitted within one
	// window of each other share a batch.
	FlushInterval time.Duration

	// MaxQueued bounds the number of waiting items. Submissions that would
	// exceed it fail with ErrQueueFull.
	MaxQueued int

	// InitialBackoff seeds the delay after the first retryable failure.
	// Each further consecutive failure doubles it.
	InitialBackoff time.Duration

	// BackoffCeiling is the largest delay tolerated. A failure whose next
	// delay would exceed it latches the engine permanently failed.
	BackoffCeiling time.Duration
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Name:           "default",
		BatchSize:      DefaultBatchSize,
		FlushInterval:  DefaultFlushInterval,
		MaxQueued:      DefaultMaxQueued,
		InitialBackoff: DefaultInitialBackoff,
		BackoffCeiling: DefaultBackoffCeiling,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.BatchSize == 0 {
		c.BatchSize = d.BatchSize
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = d.FlushInterval
	}
	if c.MaxQueued == 0 {
		c.MaxQueued = d.MaxQueued
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.BackoffCeiling == 0 {
		c.BackoffCeiling = d.BackoffCeiling
	}
	return c
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	case c.FlushInterval <= 0:
		return fmt.Errorf("%w: flush interval must be positive, got %s", ErrInvalidConfig, c.FlushInterval)
	case c.MaxQueued <= 0:
		return fmt.Errorf("%w: max queued must be positive, got %d", ErrInvalidConfig, c.MaxQueued)
	case c.InitialBackoff <= 0:
		return fmt.Errorf("%w: initial backoff must be positive, got %s", ErrInvalidConfig, c.InitialBackoff)
	case c.BackoffCeiling < c.InitialBackoff:
		return fmt.Errorf("%w: backoff ceiling %s is below initial backoff %s", ErrInvalidConfig, c.BackoffCeiling, c.InitialBackoff)
	}
	return nil
}
