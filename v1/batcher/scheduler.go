package batcher

// requestFlushLocked moves an idle engine into the flush-scheduled state: it
// drains one batch now and arms the window timer. While a timer is armed the
// call does nothing. e.mu must be held.
func (e *Engine[P, R]) requestFlushLocked() {
	if e.flush != nil || e.closed || e.backoff.err() != nil {
		return
	}

	e.drainLocked()

	delay := e.cfg.FlushInterval
	if wait := e.backoff.wait(e.clock.Now()); wait > delay {
		delay = wait
	}

	e.flushSeq++
	seq := e.flushSeq
	e.flush = e.clock.AfterFunc(delay, func() { e.onFlushTimer(seq) })
}

// onFlushTimer returns the engine to idle and, if work is still queued,
// immediately schedules the next window.
func (e *Engine[P, R]) onFlushTimer(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// stale timer from before a stop
	if seq != e.flushSeq || e.flush == nil {
		return
	}
	e.flush = nil

	if e.queue.len() > 0 {
		e.requestFlushLocked()
	}
}

func (e *Engine[P, R]) stopFlushLocked() {
	if e.flush == nil {
		return
	}
	e.flush.Stop()
	e.flush = nil
}
