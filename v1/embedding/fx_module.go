package embedding

import (
	"context"

	"go.uber.org/fx"

	"github.com/atlasdata/atlas-go/v1/atlas"
	"github.com/atlasdata/atlas-go/v1/batcher"
	"github.com/atlasdata/atlas-go/v1/logger"
	"github.com/atlasdata/atlas-go/v1/observability"
	"github.com/atlasdata/atlas-go/v1/tracer"
)

// FXModule wires the embedder into Fx.
//
// It provides:
//   - Config     (NewConfig)
//   - *Embedder  (NewEmbedderFromParams)
//
// and requires an *atlas.Client and a logger.Logger. An
// observability.Observer and a *tracer.Tracer are used when present.
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewConfig,
		NewEmbedderFromParams,
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// Params groups the embedder dependencies.
type Params struct {
	fx.In

	Config   Config
	Client   *atlas.Client
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
}

// NewEmbedderFromParams builds an Embedder from injected dependencies.
func NewEmbedderFromParams(p Params) (*Embedder, error) {
	opts := []batcher.Option{batcher.WithLogger(p.Logger)}
	if p.Observer != nil {
		opts = append(opts, batcher.WithObserver(p.Observer))
	}
	if p.Tracer != nil {
		opts = append(opts, batcher.WithTracerProvider(p.Tracer.Provider()))
	}
	return NewEmbedder(p.Config, p.Client, opts...)
}

// RegisterEmbeddingLifecycle drains the embedder on application shutdown.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, e *Embedder, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.InfoWithContext(ctx, "shutting down embedder...", nil, map[string]interface{}{
				"model":       string(e.Model()),
				"tokens_used": e.TokensUsed(),
			})
			return e.Shutdown(ctx)
		},
	})
}
