package batcher

import (
	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel"
	traceapi "go.opentelemetry.io/otel/trace"

	"github.com/atlasdata/atlas-go/v1/observability"
)

const instrumentationName = "github.com/atlasdata/atlas-go/v1/batcher"

// Option customises an Engine.
type Option func(*settings)

type settings struct {
	clock     clock.Clock
	logger    Logger
	observer  observability.Observer
	tracer    traceapi.TracerProvider
	retryable func(error) bool
}

func defaultSettings() settings {
	return settings{
		clock:     clock.New(),
		logger:    nopLogger{},
		tracer:    otel.GetTracerProvider(),
		retryable: IsRetryable,
	}
}

// WithClock replaces the wall clock that drives the coalescing window and
// backoff waits. Tests pass clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver sets an observer notified for every dispatched batch and every
// rejected submission.
func WithObserver(o observability.Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}

// WithTracerProvider sets where batch spans are recorded. The default is the
// global provider.
func WithTracerProvider(tp traceapi.TracerProvider) Option {
	return func(s *settings) {
		if tp != nil {
			s.tracer = tp
		}
	}
}

// WithRetryClassifier replaces IsRetryable as the test for whether a failed
// batch is requeued with backoff or failed outright.
func WithRetryClassifier(fn func(error) bool) Option {
	return func(s *settings) {
		if fn != nil {
			s.retryable = fn
		}
	}
}
