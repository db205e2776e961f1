package batcher

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	traceapi "go.opentelemetry.io/otel/trace"

	"github.com/atlasdata/atlas-go/v1/observability"
)

// Result is what a BatchFunc returns for one batch: one value per input item,
// in input order, plus an optional usage figure such as tokens consumed.
type Result[R any] struct {
	Values []R
	Usage  int64
}

// BatchFunc performs the collaborator call for one batch. Errors that
// implement Retryable() bool and return true are retried with backoff; any
// other error fails every item of the batch.
type BatchFunc[P, R any] func(ctx context.Context, batch []P) (Result[R], error)

// Stats is a point-in-time snapshot of an Engine.
type Stats struct {
	Queued       int
	Usage        int64
	BackoffDelay time.Duration
	Failed       bool
}

// Engine coalesces submitted payloads into batches, sends at most one batch per
// flush window and backs off on retryable failures.
//
// An Engine is safe for concurrent use. Engines share no state with each
// other.
type Engine[P, R any] struct {
	cfg       Config
	fn        BatchFunc[P, R]
	clock     clock.Clock
	logger    Logger
	observer  observability.Observer
	tracer    traceapi.Tracer
	retryable func(error) bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	queue    workQueue[P, R]
	backoff  *backoffController
	flush    *clock.Timer // nil while idle
	flushSeq uint64
	usage    int64
	closed   bool
}

// New creates an Engine that sends batches through fn. Zero fields of cfg take
// their DefaultConfig values.
//
// Example:
//
//	eng, err := batcher.New(batcher.DefaultConfig(), func(ctx context.Context, in []string) (batcher.Result[int], error) {
//	    out := make([]int, len(in))
//	    for i, s := range in {
//	        out[i] = len(s)
//	    }
//	    return batcher.Result[int]{Values: out}, nil
//	})
//	n, err := eng.Submit(ctx, "hello")
func New[P, R any](cfg Config, fn BatchFunc[P, R], opts ...Option) (*Engine[P, R], error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, ErrInvalidConfig
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Engine[P, R]{
		cfg:       cfg,
		fn:        fn,
		clock:     s.clock,
		logger:    s.logger,
		observer:  s.observer,
		tracer:    s.tracer.Tracer(instrumentationName),
		retryable: s.retryable,
		baseCtx:   ctx,
		cancel:    cancel,
		backoff:   newBackoffController(cfg.InitialBackoff, cfg.BackoffCeiling),
	}, nil
}

// Submit queues one payload and waits for its result. It behaves exactly like
// SubmitMany with a single element.
func (e *Engine[P, R]) Submit(ctx context.Context, payload P) (R, error) {
	out, err := e.SubmitMany(ctx, []P{payload})
	if err != nil {
		var zero R
		return zero, err
	}
	return out[0], nil
}

// SubmitMany queues payloads in order and waits until each is settled. The
// returned slice is index-aligned with payloads.
//
// It fails immediately, without queueing anything, if the engine has
// latched permanently failed, has been closed, or if the payloads would
// push the queue past Config.MaxQueued. Queued items whose context is already
// done are dropped before that limit is checked. If any item fails, the first
// failure in input order is returned.
//
// Cancelling ctx returns ctx.Err(); items not yet sent are dropped.
func (e *Engine[P, R]) SubmitMany(ctx context.Context, payloads []P) ([]R, error) {
	if len(payloads) == 0 {
		return []R{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]*pendingItem[P, R], len(payloads))
	for i, p := range payloads {
		items[i] = newPendingItem[P, R](ctx, p)
	}

	e.mu.Lock()
	if err := e.admitLocked(len(items)); err != nil {
		depth := e.queue.len()
		e.mu.Unlock()
		e.observeSubmit(len(items), depth, err)
		return nil, err
	}
	e.queue.push(items...)
	e.requestFlushLocked()
	e.mu.Unlock()

	out := make([]R, len(items))
	for i, it := range items {
		v, err := it.wait()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Engine[P, R]) admitLocked(n int) error {
	if err := e.backoff.err(); err != nil {
		return err
	}
	if e.closed {
		return ErrClosed
	}
	if e.queue.len()+n <= e.cfg.MaxQueued {
		return nil
	}

	// cancelled items give up their slots
	for _, it := range e.queue.prune() {
		it.reject(it.ctx.Err())
	}
	if depth := e.queue.len(); depth+n > e.cfg.MaxQueued {
		return queueFullError(depth)
	}
	return nil
}

// Usage returns the sum of Result.Usage over all successful batches.
func (e *Engine[P, R]) Usage() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usage
}

// Stats returns a snapshot of the engine state.
func (e *Engine[P, R]) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Queued:       e.queue.len(),
		Usage:        e.usage,
		BackoffDelay: e.backoff.delay,
		Failed:       e.backoff.err() != nil,
	}
}

// Shutdown stops accepting work, rejects everything still queued with
// ErrClosed and waits for in-flight batches. If ctx ends first, in-flight calls
// are cancelled and ctx.Err() is returned.
func (e *Engine[P, R]) Shutdown(ctx context.Context) error {
	e.closeQueue()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.cancel()
		return nil
	case <-ctx.Done():
		e.cancel()
		<-done
		return ctx.Err()
	}
}

// Close cancels in-flight batches and releases the engine. Waiting callers
// receive ErrClosed.
func (e *Engine[P, R]) Close() error {
	e.closeQueue()
	e.cancel()
	e.wg.Wait()
	return nil
}

func (e *Engine[P, R]) closeQueue() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.stopFlushLocked()
	for _, it := range e.queue.drain() {
		it.reject(ErrClosed)
	}
	e.logger.Info("batch engine closed", nil, map[string]interface{}{
		"engine": e.cfg.Name,
	})
}

func (e *Engine[P, R]) observeSubmit(n, depth int, err error) {
	if e.observer == nil {
		return
	}
	reason := "accepted"
	switch {
	case IsQueueFull(err):
		reason = "queue_full"
	case IsPermanentFailure(err):
		reason = "permanent_failure"
	case IsClosed(err):
		reason = "closed"
	}
	e.observer.ObserveOperation(observability.OperationContext{
		Component:   "batcher",
		Operation:   "submit",
		Resource:    e.cfg.Name,
		SubResource: reason,
		Error:       err,
		Size:        int64(n),
		Metadata: map[string]interface{}{
			observability.MetaQueueDepth: depth,
		},
	})
}
