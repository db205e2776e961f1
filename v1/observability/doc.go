// Package observability defines the hook through which std packages report
// the operations they perform.
//
// Packages that do I/O on behalf of callers (the batch engine, the Atlas API
// client) accept an Observer and call ObserveOperation once per operation with
// an OperationContext describing it. Concrete observers translate those
// reports into metrics, traces or logs; the metrics package ships a Prometheus
// implementation.
//
// Observers are optional everywhere: a nil observer is never called.
//
// Example:
//
//	type countingObserver struct{ n atomic.Int64 }
//
//	func (c *countingObserver) ObserveOperation(op observability.OperationContext) {
//		c.n.Add(1)
//	}
//
//	engine := batcher.New(cfg, call, batcher.WithObserver(&countingObserver{}))
package observability
