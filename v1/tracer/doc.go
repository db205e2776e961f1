// Package tracer wires OpenTelemetry tracing for std services.
//
// NewClient builds an SDK TracerProvider (optionally exporting over OTLP/HTTP),
// installs it globally together with the W3C trace-context and baggage
// propagators, and returns a *Tracer with small helpers:
//
//	tr := tracer.NewClient(tracer.Config{ServiceName: "embedder"}, log)
//	ctx, span := tr.StartSpan(ctx, "embed")
//	defer span.End()
//	tr.SetAttributes(span, map[string]interface{}{"texts": 12})
//
// The batch engine creates one span per dispatched batch from the provider
// returned by Provider().
package tracer
