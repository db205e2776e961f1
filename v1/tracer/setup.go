package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	traceapi "go.opentelemetry.io/otel/trace"
)

// Logger defines the interface for logging operations in the tracer package.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=tracer
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Tracer provides a simplified API for distributed tracing with OpenTelemetry.
// It wraps the SDK TracerProvider and offers helpers for spans, errors,
// attributes and context propagation.
//
// The Tracer is safe for concurrent use.
type Tracer struct {
	tracer *trace.TracerProvider
	logger Logger
}

// NewClient creates and initializes a new Tracer and installs it as the
// global OpenTelemetry tracer provider and propagator.
//
// If trace export is enabled an OTLP HTTP exporter is attached with a batching
// span processor. Failure to create the exporter is fatal.
//
// Example:
//
//	tr := tracer.NewClient(tracer.Config{ServiceName: "embedder", AppEnv: "production"}, log)
//	ctx, span := tr.StartSpan(ctx, "embed")
//	defer span.End()
func NewClient(cfg Config, logger Logger) *Tracer {
	return NewClientWithOptions(cfg, logger)
}

// NewClientWithOptions is NewClient with extra TracerProvider options, e.g. a
// span processor used by tests.
func NewClientWithOptions(cfg Config, logger Logger, opts ...trace.TracerProviderOption) *Tracer {
	var options []trace.TracerProviderOption

	if cfg.EnableExport {
		client := otlptracehttp.NewClient()
		exporter, err := otlptrace.New(context.Background(), client)
		if err != nil {
			logger.Fatal("cannot initiate tracer", err, nil)
			return nil
		}
		options = append(options, trace.WithBatcher(exporter))
	}

	options = append(options, trace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))
	options = append(options, opts...)

	tp := trace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("tracer initialized", nil, map[string]interface{}{
		"service":        cfg.ServiceName,
		"environment":    cfg.AppEnv,
		"export_enabled": cfg.EnableExport,
	})

	return &Tracer{tracer: tp, logger: logger}
}

// Provider exposes the underlying provider so other packages can create
// their own named tracers from it.
func (t *Tracer) Provider() traceapi.TracerProvider {
	return t.tracer
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.tracer == nil {
		return nil
	}
	return t.tracer.Shutdown(ctx)
}
