// Package atlas is the authenticated call primitive for the Atlas API.
//
// It is deliberately small: one Client that POSTs JSON with a bearer token and
// returns *APIError for non-2xx responses. APIError.Retryable reports whether
// the status (429 or 5xx) signals a transient condition, which is how the batch
// engine decides between requeueing and failing a batch.
//
//	client, err := atlas.NewClient(atlas.NewConfig())
//	var out struct{ Embeddings [][]float64 `json:"embeddings"` }
//	err = client.PostJSON(ctx, "/v1/embedding/text", req, &out)
//	if apiErr, ok := atlas.IsAPIError(err); ok && apiErr.Retryable() {
//		// back off
//	}
//
// With WithTracer set, every request gets an "atlas.post" span and carries
// the W3C traceparent header of that span.
//
// Configuration:
//
//	ATLAS_API_KEY               bearer token (required)
//	ATLAS_API_ENDPOINT          base URL (default https://api-atlas.nomic.ai)
//	ATLAS_HTTP_TIMEOUT_SECONDS  request timeout (default 30)
package atlas
