package tracer

import (
	"context"
	"errors"
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
)

func newRecordedTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("tracer initialized", nil, gomock.Any()).Times(1)

	sr := tracetest.NewSpanRecorder()
	tr := NewClientWithOptions(Config{ServiceName: "embedder", AppEnv: "test"}, mockLogger, sdktrace.WithSpanProcessor(sr))
	require.NotNil(t, tr)
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })
	return tr, sr
}

func TestStartSpanRecordsAttributesAndErrors(t *testing.T) {
	tr, sr := newRecordedTracer(t)

	_, span := tr.StartSpan(context.Background(), "dispatch")
	tr.SetAttributes(span, map[string]interface{}{
		"batch.size": 3,
		"batch.id":   "abc",
		"ratio":      0.5,
		"retry":      true,
		"tokens":     int64(12),
		"other":      []int{1},
	})
	tr.RecordErrorOnSpan(span, errors.New("http 429"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "dispatch", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "http 429", ended[0].Status().Description)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, int64(3), attrs["batch.size"].AsInt64())
	assert.Equal(t, "abc", attrs["batch.id"].AsString())
	assert.Equal(t, 0.5, attrs["ratio"].AsFloat64())
	assert.True(t, attrs["retry"].AsBool())
	assert.Equal(t, int64(12), attrs["tokens"].AsInt64())
	assert.Equal(t, "[1]", attrs["other"].AsString())
}

func TestSetAttributesEmptyIsNoop(t *testing.T) {
	tr, sr := newRecordedTracer(t)

	_, span := tr.StartSpan(context.Background(), "noop")
	tr.SetAttributes(span, nil)
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Empty(t, sr.Ended()[0].Attributes())
}

func TestGetCarrierCarriesSpanContext(t *testing.T) {
	tr, _ := newRecordedTracer(t)

	ctx, span := tr.StartSpan(context.Background(), "parent")
	defer span.End()

	carrier := tr.GetCarrier(ctx)
	require.Contains(t, carrier, "traceparent")

	sc := span.SpanContext()
	assert.Equal(t, "00-"+sc.TraceID().String()+"-"+sc.SpanID().String()+"-01", carrier["traceparent"])
}

func TestGetCarrierWithoutSpanIsEmpty(t *testing.T) {
	tr, _ := newRecordedTracer(t)

	assert.Empty(t, tr.GetCarrier(context.Background()))
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("TRACER_SERVICE_NAME", "embedder")
	t.Setenv("APP_ENV", "staging")
	t.Setenv("TRACER_ENABLE_EXPORT", "false")

	cfg := NewConfig()
	assert.Equal(t, "embedder", cfg.ServiceName)
	assert.Equal(t, "staging", cfg.AppEnv)
	assert.False(t, cfg.EnableExport)
}

func TestFXModuleShutsDownTracer(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("tracer initialized", nil, gomock.Any()).Times(1)
	mockLogger.EXPECT().Info("shutting down tracer...", nil, nil).Times(1)

	var tr *Tracer
	app := fxtest.New(t,
		FXModule,
		fx.Provide(
			func() Config { return Config{ServiceName: "embedder"} },
			func() Logger { return mockLogger },
		),
		fx.Populate(&tr),
	)

	app.RequireStart()
	require.NotNil(t, tr)
	require.NotNil(t, tr.Provider())
	app.RequireStop()
}
