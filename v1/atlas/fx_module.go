package atlas

import (
	"context"

	"go.uber.org/fx"

	"github.com/atlasdata/atlas-go/v1/observability"
	"github.com/atlasdata/atlas-go/v1/tracer"
)

// FXModule wires the Atlas API client into Fx.
//
// It provides:
//   - Config   (NewConfig, from the environment)
//   - *Client  (NewClientFromParams)
//
// An observability.Observer and a *tracer.Tracer are used when present. Idle
// connections are closed on shutdown.
var FXModule = fx.Module(
	"atlas",

	fx.Provide(
		NewConfig,
		NewClientFromParams,
	),

	fx.Invoke(RegisterClientLifecycle),
)

// Params groups the client dependencies.
type Params struct {
	fx.In

	Config   Config
	Observer observability.Observer `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
}

// NewClientFromParams builds a Client from injected dependencies.
func NewClientFromParams(p Params) (*Client, error) {
	c, err := NewClient(p.Config)
	if err != nil {
		return nil, err
	}
	if p.Observer != nil {
		c.WithObserver(p.Observer)
	}
	if p.Tracer != nil {
		c.WithTracer(p.Tracer)
	}
	return c, nil
}

// RegisterClientLifecycle closes the client on application shutdown.
func RegisterClientLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
