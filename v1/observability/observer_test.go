package observability

import (
	"errors"
	"testing"
	"time"
)

func TestObserverFuncForwards(t *testing.T) {
	var got OperationContext
	obs := ObserverFunc(func(ctx OperationContext) { got = ctx })

	obs.ObserveOperation(OperationContext{
		Component: "batcher",
		Operation: "dispatch",
		Size:      3,
		Duration:  5 * time.Millisecond,
	})

	if got.Component != "batcher" || got.Operation != "dispatch" {
		t.Fatalf("unexpected context %#v", got)
	}
	if got.Size != 3 {
		t.Fatalf("expected size 3, got %d", got.Size)
	}
}

func TestMultiSkipsNilAndKeepsOrder(t *testing.T) {
	var order []string
	first := ObserverFunc(func(ctx OperationContext) { order = append(order, "first:"+ctx.Operation) })
	second := ObserverFunc(func(ctx OperationContext) { order = append(order, "second:"+ctx.Operation) })

	Multi(first, nil, second).ObserveOperation(OperationContext{Operation: "submit", Error: errors.New("x")})

	if len(order) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(order))
	}
	if order[0] != "first:submit" || order[1] != "second:submit" {
		t.Fatalf("unexpected order %v", order)
	}
}
