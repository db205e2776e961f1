package embedding

import (
	"context"
	"fmt"

	"github.com/atlasdata/atlas-go/v1/atlas"
	"github.com/atlasdata/atlas-go/v1/batcher"
)

// Caller is the authenticated call primitive the embedder sends batches
// through. *atlas.Client implements it.
type Caller interface {
	PostJSON(ctx context.Context, endpoint string, body any, out any) error
}

var _ Caller = (*atlas.Client)(nil)

// Embedder pools embedding requests into batched API calls.
//
// Submit texts concurrently, or many at once with EmbedMany, and let the
// embedder coalesce them; awaiting each text before submitting the next one
// produces one small request per text.
type Embedder struct {
	cfg    Config
	caller Caller
	engine *batcher.Engine[string, Embedding]
}

// NewEmbedder validates cfg and builds an embedder that calls the API through
// caller. Engine options such as batcher.WithLogger are passed on.
func NewEmbedder(cfg Config, caller Caller, opts ...batcher.Option) (*Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, fmt.Errorf("embedding: nil caller")
	}

	e := &Embedder{cfg: cfg, caller: caller}

	engine, err := batcher.New[string, Embedding](cfg.engineConfig(), e.send, opts...)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	e.engine = engine

	return e, nil
}

// Embed returns the embedding of one text.
func (e *Embedder) Embed(ctx context.Context, text string) (Embedding, error) {
	return e.engine.Submit(ctx, text)
}

// EmbedMany returns one embedding per text, in the same order.
func (e *Embedder) EmbedMany(ctx context.Context, texts []string) ([]Embedding, error) {
	return e.engine.SubmitMany(ctx, texts)
}

// TokensUsed is the running total of tokens billed to this embedder.
func (e *Embedder) TokensUsed() int64 {
	return e.engine.Usage()
}

// Stats exposes the pooling state.
func (e *Embedder) Stats() batcher.Stats {
	return e.engine.Stats()
}

// Model returns the embedding model requests are sent with.
func (e *Embedder) Model() Model {
	return e.cfg.Model
}

// TaskType returns the task type requests are sent with.
func (e *Embedder) TaskType() TaskType {
	return e.cfg.TaskType
}

// Shutdown waits for in-flight requests and fails queued ones.
func (e *Embedder) Shutdown(ctx context.Context) error {
	return e.engine.Shutdown(ctx)
}

// Close cancels in-flight requests.
func (e *Embedder) Close() error {
	return e.engine.Close()
}

func (e *Embedder) send(ctx context.Context, texts []string) (batcher.Result[Embedding], error) {
	var resp textResponse
	err := e.caller.PostJSON(ctx, textEndpoint, textRequest{
		Model:    e.cfg.Model,
		TaskType: e.cfg.TaskType,
		Texts:    texts,
	}, &resp)
	if err != nil {
		return batcher.Result[Embedding]{}, err
	}

	return batcher.Result[Embedding]{
		Values: resp.Embeddings,
		Usage:  resp.Usage.TotalTokens,
	}, nil
}

// EmbedTexts embeds texts with a throwaway embedder. Prefer a long-lived
// Embedder when embedding repeatedly.
func EmbedTexts(ctx context.Context, caller Caller, cfg Config, texts ...string) ([]Embedding, error) {
	e, err := NewEmbedder(cfg, caller)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	return e.EmbedMany(ctx, texts)
}
