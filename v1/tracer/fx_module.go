package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the tracer client and registers its shutdown hook.
//
// Dependencies required by this module:
//   - a tracer.Config (NewConfig can be provided for environment loading)
//   - a tracer.Logger
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle flushes and shuts down the provider on stop.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			tracer.logger.Info("shutting down tracer...", nil, nil)
			if tracer.tracer == nil {
				tracer.logger.Warn("tracer was nil during shutdown", nil, nil)
				return nil
			}
			return tracer.Shutdown(ctx)
		},
	})
}
