// Package metrics provides Prometheus-based monitoring for std services.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - MetricsCollector interface: Defines the contract for metrics operations
//   - Metrics struct: Concrete implementation, also an observability.Observer
//   - NewMetrics constructor: Returns *Metrics (concrete type)
//   - FX module: Provides *Metrics, MetricsCollector and observability.Observer
//
// # Batch Engine Metrics
//
// When passed to a batch engine as its observer, Metrics records:
//
//	batches_total{component,resource,outcome}   success | retry | rejected | permanent_failure | cancelled
//	batch_size{resource}                        items per dispatched batch
//	request_duration_seconds{component,operation}
//	queue_depth{resource}                       items waiting after each event
//	backoff_delay_seconds{resource}             current retry delay
//	usage_total{resource}                       tokens reported by the service
//	submissions_rejected_total{resource,reason} queue_full | permanent_failure | closed
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:                 ":9090",
//		EnableDefaultCollectors: true,
//		ServiceName:             "embedder",
//	})
//	go m.Server.ListenAndServe()
//
// Access metrics at: http://localhost:9090/metrics
package metrics
