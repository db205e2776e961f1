package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/atlasdata/atlas-go/v1/logger"
	"github.com/atlasdata/atlas-go/v1/observability"
)

func TestObserveDispatch(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "embedder"})

	m.ObserveOperation(observability.OperationContext{
		Component:   "batcher",
		Operation:   "dispatch",
		Resource:    "embedding",
		SubResource: "success",
		Duration:    20 * time.Millisecond,
		Size:        3,
		Metadata: map[string]interface{}{
			observability.MetaQueueDepth: 7,
			observability.MetaUsage:      int64(42),
			observability.MetaBackoff:    time.Duration(0),
		},
	})
	m.ObserveOperation(observability.OperationContext{
		Component:   "batcher",
		Operation:   "dispatch",
		Resource:    "embedding",
		SubResource: "retry",
		Error:       errors.New("http 429"),
		Size:        3,
		Metadata: map[string]interface{}{
			observability.MetaQueueDepth: 3,
			observability.MetaBackoff:    2 * time.Second,
		},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchesTotal.WithLabelValues("batcher", "embedding", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchesTotal.WithLabelValues("batcher", "embedding", "retry")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.usageTotal.WithLabelValues("embedding")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.queueDepth.WithLabelValues("embedding")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.backoffDelay.WithLabelValues("embedding")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.batchSize))
}

func TestObserveRejectedSubmission(t *testing.T) {
	m := NewMetrics(Config{})

	m.ObserveOperation(observability.OperationContext{
		Component:   "batcher",
		Operation:   "submit",
		Resource:    "embedding",
		SubResource: "queue_full",
		Error:       errors.New("queue full"),
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "batcher",
		Operation: "submit",
		Resource:  "embedding",
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissionsRejected.WithLabelValues("embedding", "queue_full")))
}

func TestObserveOtherOperationsCountRequests(t *testing.T) {
	m := NewMetrics(Config{})

	m.ObserveOperation(observability.OperationContext{Component: "atlas", Operation: "post"})
	m.ObserveOperation(observability.OperationContext{Component: "atlas", Operation: "post", Error: errors.New("x")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("error")))
}

func TestNamespaceAndServiceLabel(t *testing.T) {
	m := NewMetrics(Config{Namespace: "atlas", ServiceName: "embedder"})
	m.IncrementRequests("success")

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() != "atlas_requests_total" {
			continue
		}
		found = true
		labels := map[string]string{}
		for _, l := range f.GetMetric()[0].GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		assert.Equal(t, "embedder", labels["service"])
		assert.Equal(t, "success", labels["status"])
	}
	assert.True(t, found, "atlas_requests_total not gathered")
}

func TestCreateDynamicMetrics(t *testing.T) {
	m := NewMetrics(Config{})

	c := m.CreateCounter("uploads_total", "uploads", []string{"kind"})
	h := m.CreateHistogram("upload_seconds", "upload latency", []string{"kind"}, []float64{0.1, 1})
	g := m.CreateGauge("inflight", "in flight", []string{"kind"})

	c.WithLabelValues("json").Inc()
	h.WithLabelValues("json").Observe(0.2)
	g.WithLabelValues("json").Set(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.WithLabelValues("json")))
	assert.Equal(t, 2.0, testutil.ToFloat64(g.WithLabelValues("json")))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := NewMetrics(Config{})
	m.IncrementRequests("success")

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `requests_total{status="success"} 1`)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("METRICS_ADDRESS", ":9191")
	t.Setenv("METRICS_ENABLE_DEFAULT_COLLECTORS", "false")
	t.Setenv("METRICS_NAMESPACE", "atlas")

	cfg := NewConfig()
	assert.Equal(t, ":9191", cfg.Address)
	assert.False(t, cfg.EnableDefaultCollectors)
	assert.Equal(t, "atlas", cfg.Namespace)
}

func TestFXModuleProvidesObserver(t *testing.T) {
	var obs observability.Observer
	app := fxtest.New(t,
		FXModule,
		fx.Provide(
			func() Config { return Config{Address: "127.0.0.1:0"} },
			func() logger.Logger { return logger.NewWithZap(zap.NewNop(), false) },
		),
		fx.Populate(&obs),
	)

	app.RequireStart()
	require.NotNil(t, obs)
	require.NoError(t, app.Stop(context.Background()))
}
