// Package embedding computes text embeddings through the Atlas API.
//
// # Overview
//
// The public entrypoint is Embedder. It pools calls to Embed and EmbedMany
// into batched requests against /v1/embedding/text, so many small requests
// made in quick succession cost few API calls.
//
//	client, err := atlas.NewClient(atlas.NewConfig())
//	if err != nil {
//	    return err
//	}
//	emb, err := embedding.NewEmbedder(embedding.DefaultConfig(), client)
//	if err != nil {
//	    return err
//	}
//	defer emb.Close()
//
//	vectors, err := emb.EmbedMany(ctx, documents)
//
// Issuing Embed from many goroutines pools just as well:
//
//	g, ctx := errgroup.WithContext(ctx)
//	for i, doc := range documents {
//	    g.Go(func() error {
//	        v, err := emb.Embed(ctx, doc)
//	        vectors[i] = v
//	        return err
//	    })
//	}
//	err = g.Wait()
//
// Awaiting each Embed before issuing the next one defeats the pooling.
//
// # Throttling
//
// HTTP 429 and 5xx responses put the batch back in the queue and the embedder
// waits 1s, 2s, 4s, then 8s before retrying. If throttling continues past that
// the embedder fails permanently; create a new one to try again later.
// Other errors fail only the texts in the affected request.
//
// # Configuration
//
//	EMBEDDING_MODEL              default nomic-embed-text-v1.5
//	EMBEDDING_TASK_TYPE          default search_document
//	EMBEDDING_BATCH_SIZE         default 400
//	EMBEDDING_FLUSH_INTERVAL_MS  default 510
//	EMBEDDING_MAX_QUEUED         default 100000
//
// # Fx
//
// FXModule provides the Embedder. Combine it with atlas.FXModule and
// logger.FXModule; metrics.FXModule and tracer.FXModule are picked up when
// present.
package embedding
