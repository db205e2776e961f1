package batcher

import (
	"context"
	"slices"
	"sync"
)

type outcome[R any] struct {
	value R
	err   error
}

// pendingItem is one submitted payload and its single-assignment result cell.
type pendingItem[P, R any] struct {
	ctx     context.Context
	payload P
	done    chan outcome[R]
	once    sync.Once
}

func newPendingItem[P, R any](ctx context.Context, payload P) *pendingItem[P, R] {
	return &pendingItem[P, R]{
		ctx:     ctx,
		payload: payload,
		done:    make(chan outcome[R], 1),
	}
}

// resolve settles the item with v. It reports false if the item was already settled.
func (it *pendingItem[P, R]) resolve(v R) bool {
	return it.settle(outcome[R]{value: v})
}

// reject settles the item with err. It reports false if the item was already settled.
func (it *pendingItem[P, R]) reject(err error) bool {
	return it.settle(outcome[R]{err: err})
}

func (it *pendingItem[P, R]) settle(o outcome[R]) bool {
	settled := false
	it.once.Do(func() {
		it.done <- o
		settled = true
	})
	return settled
}

// wait blocks until the item is settled or its context is done.
func (it *pendingItem[P, R]) wait() (R, error) {
	select {
	case o := <-it.done:
		return o.value, o.err
	case <-it.ctx.Done():
		var zero R
		return zero, it.ctx.Err()
	}
}

// workQueue holds items in submission order. It is not safe for concurrent
// use; the engine mutex guards it.
type workQueue[P, R any] struct {
	items []*pendingItem[P, R]
}

func (q *workQueue[P, R]) len() int {
	return len(q.items)
}

func (q *workQueue[P, R]) push(items ...*pendingItem[P, R]) {
	q.items = append(q.items, items...)
}

// pushFront puts a batch back ahead of everything queued, keeping its order.
func (q *workQueue[P, R]) pushFront(items []*pendingItem[P, R]) {
	q.items = slices.Concat(items, q.items)
}

// pop removes and returns up to n items from the front.
func (q *workQueue[P, R]) pop(n int) []*pendingItem[P, R] {
	n = min(n, len(q.items))
	if n <= 0 {
		return nil
	}
	out := slices.Clone(q.items[:n])
	clear(q.items[:n])
	q.items = q.items[n:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return out
}

// drain removes and returns everything.
func (q *workQueue[P, R]) drain() []*pendingItem[P, R] {
	out := q.items
	q.items = nil
	return out
}

// prune removes items whose context is done and returns them, keeping the
// order of the rest.
func (q *workQueue[P, R]) prune() []*pendingItem[P, R] {
	var removed []*pendingItem[P, R]
	kept := q.items[:0]
	for _, it := range q.items {
		if it.ctx.Err() != nil {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	clear(q.items[len(kept):])
	q.items = kept
	if len(q.items) == 0 {
		q.items = nil
	}
	return removed
}
