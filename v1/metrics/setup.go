package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing application metrics, plus the collectors fed by batch engines
// through ObserveOperation.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	registerer prometheus.Registerer
	namespace  string

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	batchesTotal        *prometheus.CounterVec
	batchSize           *prometheus.HistogramVec
	queueDepth          *prometheus.GaugeVec
	backoffDelay        *prometheus.GaugeVec
	usageTotal          *prometheus.CounterVec
	submissionsRejected *prometheus.CounterVec
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, optionally registers default
// system collectors, applies a constant `service` label, and creates an HTTP
// server exposing the /metrics endpoint.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "embedder"})
//	go m.Server.ListenAndServe()
//	engine := batcher.New(cfg, call, batcher.WithObserver(m))
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	var registerer prometheus.Registerer = registry
	if cfg.ServiceName != "" {
		registerer = prometheus.WrapRegistererWith(
			prometheus.Labels{"service": cfg.ServiceName},
			registry,
		)
	}

	m := &Metrics{
		Registry:   registry,
		registerer: registerer,
		namespace:  cfg.Namespace,
	}

	m.requestsTotal = createCounterVec(cfg.Namespace, "requests_total", "Total number of processed requests", []string{"status"})
	m.requestDuration = createHistogramVec(cfg.Namespace, "request_duration_seconds", "Duration of operations in seconds", []string{"component", "operation"}, prometheus.DefBuckets)
	m.batchesTotal = createCounterVec(cfg.Namespace, "batches_total", "Dispatched batches by outcome", []string{"component", "resource", "outcome"})
	m.batchSize = createHistogramVec(cfg.Namespace, "batch_size", "Number of items per dispatched batch", []string{"resource"}, prometheus.ExponentialBuckets(1, 2, 10))
	m.queueDepth = createGaugeVec(cfg.Namespace, "queue_depth", "Items waiting in the work queue", []string{"resource"})
	m.backoffDelay = createGaugeVec(cfg.Namespace, "backoff_delay_seconds", "Current retry delay, zero when no backoff is in effect", []string{"resource"})
	m.usageTotal = createCounterVec(cfg.Namespace, "usage_total", "Usage units (e.g. tokens) reported by successful batches", []string{"resource"})
	m.submissionsRejected = createCounterVec(cfg.Namespace, "submissions_rejected_total", "Submissions refused before enqueueing", []string{"resource", "reason"})

	registerer.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.batchesTotal,
		m.batchSize,
		m.queueDepth,
		m.backoffDelay,
		m.usageTotal,
		m.submissionsRejected,
	)

	if cfg.EnableDefaultCollectors {
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return m
}
