package atlas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"

	"github.com/atlasdata/atlas-go/v1/observability"
	"github.com/atlasdata/atlas-go/v1/tracer"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL, HTTPTimeoutS: 5})
	require.NoError(t, err)
	return c
}

func TestPostJSON_SendsAuthAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "atlas-go/"+Version, r.Header.Get("User-Agent"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["say"]})
	})

	var out struct {
		Echo string `json:"echo"`
	}
	err := c.PostJSON(context.Background(), "v1/echo", map[string]string{"say": "hi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Echo)
}

func TestPostJSON_NilOutSkipsDecoding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.PostJSON(context.Background(), "/v1/noop", struct{}{}, nil))
}

func TestPostJSON_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var out map[string]any
	err := c.PostJSON(context.Background(), "/v1/empty", struct{}{}, &out)
	assert.ErrorIs(t, err, ErrNoResponseBody)
}

func TestPostJSON_APIErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"detail":"nope"}`))
			})

			err := c.PostJSON(context.Background(), "/v1/fail", struct{}{}, nil)
			require.Error(t, err)

			apiErr, ok := IsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, http.StatusText(tt.status), apiErr.Status)
			assert.Equal(t, `{"detail":"nope"}`, apiErr.Body)
			assert.Equal(t, "1", apiErr.Header.Get("Retry-After"))
			assert.Equal(t, tt.retryable, apiErr.Retryable())
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestPostJSON_ReportsToObserver(t *testing.T) {
	var got []observability.OperationContext
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}).WithObserver(observability.ObserverFunc(func(op observability.OperationContext) {
		got = append(got, op)
	}))

	err := c.PostJSON(context.Background(), "/v1/embedding/text", map[string]int{"n": 1}, nil)
	require.Error(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "atlas", got[0].Component)
	assert.Equal(t, "post", got[0].Operation)
	assert.Equal(t, "/v1/embedding/text", got[0].Resource)
	assert.Equal(t, http.StatusTooManyRequests, got[0].Metadata[observability.MetaStatusCode])
	assert.Positive(t, got[0].Size)
	assert.Error(t, got[0].Error)
}

func TestPostJSON_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.PostJSON(ctx, "/v1/x", struct{}{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	_, isAPI := IsAPIError(err)
	assert.False(t, isAPI)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{APIKey: "k", Endpoint: DefaultEndpoint, HTTPTimeoutS: 30}.Validate())
	assert.Error(t, Config{Endpoint: DefaultEndpoint, HTTPTimeoutS: 30}.Validate())
	assert.Error(t, Config{APIKey: "k", Endpoint: "not a url", HTTPTimeoutS: 30}.Validate())
	assert.Error(t, Config{APIKey: "k", Endpoint: DefaultEndpoint}.Validate())

	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("ATLAS_API_KEY", "env-key")
	t.Setenv("ATLAS_API_ENDPOINT", "http://localhost:9999")
	t.Setenv("ATLAS_HTTP_TIMEOUT_SECONDS", "7")

	cfg := NewConfig()
	assert.Equal(t, Config{APIKey: "env-key", Endpoint: "http://localhost:9999", HTTPTimeoutS: 7}, cfg)
}

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("ATLAS_API_KEY", "")
	t.Setenv("ATLAS_API_ENDPOINT", "")
	t.Setenv("ATLAS_HTTP_TIMEOUT_SECONDS", "bogus")

	cfg := NewConfig()
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, 30, cfg.HTTPTimeoutS)
	assert.Error(t, cfg.Validate())
}

func TestFXModule(t *testing.T) {
	t.Setenv("ATLAS_API_KEY", "fx-key")

	var client *Client
	app := fxtest.New(t, FXModule, fx.Populate(&client))
	app.RequireStart()
	require.NotNil(t, client)
	assert.Equal(t, DefaultEndpoint, client.baseURL)
	app.RequireStop()
}

func newRecordedTracer(t *testing.T) (*tracer.Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := tracer.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("tracer initialized", nil, gomock.Any()).Times(1)

	sr := tracetest.NewSpanRecorder()
	tr := tracer.NewClientWithOptions(tracer.Config{ServiceName: "atlas-test", AppEnv: "test"}, mockLogger, sdktrace.WithSpanProcessor(sr))
	require.NotNil(t, tr)
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })
	return tr, sr
}

func TestPostJSON_PropagatesTraceContext(t *testing.T) {
	tr, sr := newRecordedTracer(t)

	var traceparent string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("Traceparent")
		w.WriteHeader(http.StatusServiceUnavailable)
	}).WithTracer(tr)

	ctx, parent := tr.StartSpan(context.Background(), "dispatch")
	err := c.PostJSON(ctx, "/v1/embedding/text", struct{}{}, nil)
	parent.End()
	require.Error(t, err)

	ended := sr.Ended()
	require.Len(t, ended, 2)
	post := ended[0]
	assert.Equal(t, "atlas.post", post.Name())
	assert.Equal(t, parent.SpanContext().SpanID(), post.Parent().SpanID())
	assert.Equal(t, codes.Error, post.Status().Code)

	sc := post.SpanContext()
	assert.Equal(t, "00-"+sc.TraceID().String()+"-"+sc.SpanID().String()+"-01", traceparent)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range post.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "/v1/embedding/text", attrs["http.route"].AsString())
	assert.Equal(t, int64(http.StatusServiceUnavailable), attrs["http.status_code"].AsInt64())
}

func TestPostJSON_NoTracerSendsNoTraceHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Traceparent"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.PostJSON(context.Background(), "/v1/noop", struct{}{}, nil))
}

func TestFXModule_UsesProvidedObserver(t *testing.T) {
	var got []observability.OperationContext
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("ATLAS_API_KEY", "fx-key")
	t.Setenv("ATLAS_API_ENDPOINT", srv.URL)

	var client *Client
	app := fxtest.New(t,
		FXModule,
		fx.Provide(func() observability.Observer {
			return observability.ObserverFunc(func(op observability.OperationContext) {
				got = append(got, op)
			})
		}),
		fx.Populate(&client),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NoError(t, client.PostJSON(context.Background(), "/v1/noop", struct{}{}, nil))
	require.Len(t, got, 1)
	assert.Equal(t, "post", got[0].Operation)
	assert.Equal(t, http.StatusNoContent, got[0].Metadata[observability.MetaStatusCode])
}
