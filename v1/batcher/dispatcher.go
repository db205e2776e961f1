package batcher

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	traceapi "go.opentelemetry.io/otel/trace"

	"github.com/atlasdata/atlas-go/v1/observability"
)

// payloadPrefixLen is how much of a payload a BatchError carries.
const payloadPrefixLen = 30

// Batch outcomes reported to observers.
const (
	OutcomeSuccess          = "success"
	OutcomeRetry            = "retry"
	OutcomeRejected         = "rejected"
	OutcomePermanentFailure = "permanent_failure"
	OutcomeCancelled        = "cancelled"
)

// drainLocked pops one batch and sends it on its own goroutine. It does
// nothing when the queue is empty or a backoff wait is pending. e.mu must be
// held.
func (e *Engine[P, R]) drainLocked() {
	if e.closed || e.queue.len() == 0 || e.backoff.wait(e.clock.Now()) > 0 {
		return
	}

	batch := make([]*pendingItem[P, R], 0, min(e.cfg.BatchSize, e.queue.len()))
	for len(batch) < e.cfg.BatchSize && e.queue.len() > 0 {
		for _, it := range e.queue.pop(e.cfg.BatchSize - len(batch)) {
			if err := it.ctx.Err(); err != nil {
				it.reject(err)
				continue
			}
			batch = append(batch, it)
		}
	}
	if len(batch) == 0 {
		return
	}

	e.wg.Add(1)
	go e.dispatch(uuid.NewString(), batch, e.queue.len())
}

// dispatch performs the collaborator call for one batch and settles it.
// queued is the queue depth left behind when the batch was popped.
func (e *Engine[P, R]) dispatch(id string, batch []*pendingItem[P, R], queued int) {
	defer e.wg.Done()

	ctx, span := e.tracer.Start(e.baseCtx, "batcher.dispatch",
		traceapi.WithSpanKind(traceapi.SpanKindClient),
		traceapi.WithAttributes(
			attribute.String("batcher.engine", e.cfg.Name),
			attribute.String("batcher.batch_id", id),
			attribute.Int("batcher.batch_size", len(batch)),
		),
	)
	defer span.End()

	e.logger.DebugWithContext(ctx, "dispatching batch", nil, map[string]interface{}{
		"engine":      e.cfg.Name,
		"batch_id":    id,
		"batch_size":  len(batch),
		"queue_depth": queued,
	})

	payloads := make([]P, len(batch))
	for i, it := range batch {
		payloads[i] = it.payload
	}

	start := e.clock.Now()
	res, err := e.call(ctx, payloads)
	elapsed := e.clock.Since(start)

	e.mu.Lock()
	outcome, delay := e.settleLocked(ctx, id, batch, res, err)
	depth := e.queue.len()
	e.mu.Unlock()

	span.SetAttributes(attribute.String("batcher.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	e.observeDispatch(id, len(batch), outcome, elapsed, depth, delay, res.Usage, err)
}

func (e *Engine[P, R]) call(ctx context.Context, payloads []P) (Result[R], error) {
	res, err := e.fn(ctx, payloads)
	if err != nil {
		return Result[R]{}, err
	}
	if len(res.Values) != len(payloads) {
		return Result[R]{}, fmt.Errorf("%w: got %d results for %d items", ErrResultMismatch, len(res.Values), len(payloads))
	}
	return res, nil
}

// settleLocked applies the result of one call to the batch and the engine
// state. e.mu must be held.
func (e *Engine[P, R]) settleLocked(ctx context.Context, id string, batch []*pendingItem[P, R], res Result[R], err error) (string, time.Duration) {
	if err == nil {
		for i, it := range batch {
			it.resolve(res.Values[i])
		}
		e.usage += res.Usage
		e.backoff.reset()
		return OutcomeSuccess, 0
	}

	if e.closed {
		for _, it := range batch {
			it.reject(ErrClosed)
		}
		return OutcomeCancelled, 0
	}

	if !e.retryable(err) {
		for i, it := range batch {
			it.reject(&BatchError{
				BatchID: id,
				Index:   i,
				Payload: prefix(fmt.Sprint(it.payload), payloadPrefixLen),
				Cause:   err,
			})
		}
		e.logger.WarnWithContext(ctx, "batch failed", err, map[string]interface{}{
			"engine":     e.cfg.Name,
			"batch_id":   id,
			"batch_size": len(batch),
		})
		return OutcomeRejected, e.backoff.delay
	}

	// latched by another batch while this one was in flight
	if perm := e.backoff.err(); perm != nil {
		for _, it := range batch {
			it.reject(perm)
		}
		return OutcomeRejected, 0
	}

	delay, latched := e.backoff.escalate(e.clock.Now(), err)
	if latched {
		perm := e.backoff.err()
		queued := e.queue.drain()
		for _, it := range batch {
			it.reject(perm)
		}
		for _, it := range queued {
			it.reject(perm)
		}
		e.stopFlushLocked()
		e.logger.ErrorWithContext(ctx, "batch engine failed permanently", err, map[string]interface{}{
			"engine":         e.cfg.Name,
			"batch_id":       id,
			"rejected_items": len(batch) + len(queued),
		})
		return OutcomePermanentFailure, 0
	}

	e.queue.pushFront(batch)
	e.logger.WarnWithContext(ctx, "retryable batch failure, backing off", err, map[string]interface{}{
		"engine":   e.cfg.Name,
		"batch_id": id,
		"delay":    delay.String(),
	})
	e.requestFlushLocked()
	return OutcomeRetry, delay
}

func (e *Engine[P, R]) observeDispatch(id string, size int, outcome string, d time.Duration, depth int, delay time.Duration, usage int64, err error) {
	if e.observer == nil {
		return
	}
	e.observer.ObserveOperation(observability.OperationContext{
		Component:   "batcher",
		Operation:   "dispatch",
		Resource:    e.cfg.Name,
		SubResource: outcome,
		Duration:    d,
		Error:       err,
		Size:        int64(size),
		Metadata: map[string]interface{}{
			observability.MetaBatchID:    id,
			observability.MetaQueueDepth: depth,
			observability.MetaBackoff:    delay,
			observability.MetaUsage:      usage,
		},
	})
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}
