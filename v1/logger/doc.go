// Package logger provides structured logging on top of go.uber.org/zap.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Logger interface: Defines the contract for logging operations
//   - LoggerClient struct: Concrete implementation of the Logger interface
//   - NewLoggerClient constructor: Returns *LoggerClient (concrete type)
//   - FX module: Provides both *LoggerClient and the Logger interface
//
// Every method takes a message, an optional error and optional field maps:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Info, ServiceName: "embedder"})
//	log.Info("Embedder started", nil, map[string]interface{}{
//		"model": "nomic-embed-text-v1.5",
//	})
//	log.Error("Batch failed", err, map[string]interface{}{"batch_id": id})
//
// # Tracing Integration
//
// With EnableTracing set, the *WithContext methods add trace_id and span_id
// taken from the OpenTelemetry span carried by the context:
//
//	log.WarnWithContext(ctx, "Batch throttled, retrying", err, nil)
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_SERVICE_NAME=embedder    # "service" field on every entry
//	LOGGER_ENABLE_TRACING=true      # trace/span correlation
//
// # Consumer Interfaces
//
// Packages in this module do not import logger directly; each declares the
// five-method Logger interface it needs, which *LoggerClient satisfies.
//
// All methods are safe for concurrent use.
package logger
