package observability

import "time"

// OperationContext describes a single operation reported to an Observer.
type OperationContext struct {
	// Component is the reporting package, e.g. "batcher" or "atlas".
	Component string

	// Operation names what was done, e.g. "dispatch", "submit", "post".
	Operation string

	// Resource identifies what the operation acted on (engine name, endpoint).
	Resource string

	// SubResource carries extra context such as an outcome or a model name.
	SubResource string

	// Duration is how long the operation took. Zero for instantaneous events.
	Duration time.Duration

	// Error is the failure of the operation, or nil on success.
	Error error

	// Size is the number of items or bytes involved.
	Size int64

	// Metadata holds component-specific values.
	Metadata map[string]interface{}
}

// Observer receives operation reports. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// Multi fans a report out to several observers in order. Nil entries are skipped.
func Multi(observers ...Observer) Observer {
	return ObserverFunc(func(ctx OperationContext) {
		for _, o := range observers {
			if o != nil {
				o.ObserveOperation(ctx)
			}
		}
	})
}

// Metadata keys shared by reporters and observers.
const (
	MetaBatchID    = "batch_id"
	MetaQueueDepth = "queue_depth"
	MetaBackoff    = "backoff"
	MetaUsage      = "usage"
	MetaStatusCode = "status_code"
)
