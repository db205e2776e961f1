// Package batcher turns many small requests into few collaborator calls.
//
// An Engine queues submitted payloads and coalesces them into batches of at
// most Config.BatchSize. The first submission on an idle engine is sent at
// once; after that, at most one batch leaves per Config.FlushInterval, and the
// window keeps re-arming while work remains queued. Results are matched to
// items by position.
//
// # Failures
//
// A batch whose error reports Retryable() == true (for the Atlas API, HTTP 429
// and 5xx) is put back at the front of the queue and the engine waits before
// sending again: 1s, then 2s, 4s and 8s. A success resets the delay. A failure
// whose next delay would exceed Config.BackoffCeiling latches the engine; every
// queued item and every later submission fails with ErrPermanentFailure.
//
// Any other error fails only the items of that batch, each with a *BatchError.
//
// SubmitMany rejects work that would push the queue past Config.MaxQueued with
// ErrQueueFull instead of dropping it.
//
// # Usage
//
//	eng, err := batcher.New(batcher.DefaultConfig(), send,
//	    batcher.WithLogger(log),
//	    batcher.WithObserver(metrics),
//	)
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	vectors, err := eng.SubmitMany(ctx, texts)
//
// Each engine has its own lock, queue and timer.
package batcher
