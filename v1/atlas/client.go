package atlas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	traceapi "go.opentelemetry.io/otel/trace"

	"github.com/atlasdata/atlas-go/v1/observability"
	"github.com/atlasdata/atlas-go/v1/tracer"
)

// Version is reported in the User-Agent header.
const Version = "0.1.0"

// maxErrorBody caps how much of an error response is kept on APIError.
const maxErrorBody = 64 << 10

// Client performs authenticated JSON calls against the Atlas API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	observer   observability.Observer
	tracer     *tracer.Tracer
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutS) * time.Second},
	}, nil
}

// WithObserver sets an observer notified after every request. It returns the
// client for chaining.
func (c *Client) WithObserver(o observability.Observer) *Client {
	c.observer = o
	return c
}

// WithTracer records a span per request and propagates the trace context of
// the request to the API in its headers.
func (c *Client) WithTracer(t *tracer.Tracer) *Client {
	c.tracer = t
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// PostJSON sends body as JSON to endpoint and decodes a JSON response into out.
// out may be nil when the response body is not needed.
//
// Non-2xx responses are returned as *APIError.
func (c *Client) PostJSON(ctx context.Context, endpoint string, body any, out any) error {
	start := time.Now()

	var span traceapi.Span
	if c.tracer != nil {
		ctx, span = c.tracer.StartSpan(ctx, "atlas.post")
		defer span.End()
	}

	status, n, err := c.postJSON(ctx, endpoint, body, out)

	if span != nil {
		c.tracer.SetAttributes(span, map[string]interface{}{
			"http.route":        endpoint,
			"http.status_code":  status,
			"http.request_size": n,
		})
		if err != nil {
			c.tracer.RecordErrorOnSpan(span, err)
		}
	}

	c.observe(endpoint, status, time.Since(start), n, err)
	return err
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body any, out any) (int, int64, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	data, err := json.Marshal(body)
	if err != nil {
		return 0, 0, fmt.Errorf("atlas: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("atlas: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "atlas-go/"+Version)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.tracer != nil {
		for k, v := range c.tracer.GetCarrier(ctx) {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, int64(len(data)), fmt.Errorf("atlas: http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, int64(len(data)), &APIError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Header:     resp.Header.Clone(),
			Body:       strings.TrimSpace(string(raw)),
			Endpoint:   endpoint,
		}
	}

	if out == nil {
		return resp.StatusCode, int64(len(data)), nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return resp.StatusCode, int64(len(data)), ErrNoResponseBody
		}
		return resp.StatusCode, int64(len(data)), fmt.Errorf("atlas: decode response: %w", err)
	}
	return resp.StatusCode, int64(len(data)), nil
}

func (c *Client) observe(endpoint string, status int, d time.Duration, size int64, err error) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component: "atlas",
		Operation: "post",
		Resource:  endpoint,
		Duration:  d,
		Error:     err,
		Size:      size,
		Metadata: map[string]interface{}{
			observability.MetaStatusCode: status,
		},
	})
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
