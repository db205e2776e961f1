package atlas

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoResponseBody is returned when a JSON response was expected but the body was empty.
	ErrNoResponseBody = errors.New("atlas: empty response body")
)

// APIError is returned for any response outside the 2xx range.
type APIError struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("atlas: error %d (%s) from %s", e.StatusCode, e.Status, e.Endpoint)
	}
	return fmt.Sprintf("atlas: error %d (%s) from %s: %s", e.StatusCode, e.Status, e.Endpoint, e.Body)
}

// Retryable reports whether the failure is a throttling or server-side
// condition (HTTP 429 or 5xx) that may succeed if the request is repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		(e.StatusCode >= 500 && e.StatusCode <= 599)
}

// IsAPIError reports whether err wraps an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an API error.
func StatusCode(err error) int {
	if apiErr, ok := IsAPIError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}
