package atlas

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// DefaultEndpoint is the public Atlas API.
const DefaultEndpoint = "https://api-atlas.nomic.ai"

var validate = validator.New()

// Config holds what the client needs to reach and authenticate against the API.
type Config struct {
	// APIKey is sent as a bearer token on every request.
	APIKey string `validate:"required"`

	// Endpoint is the API base URL without a trailing path.
	Endpoint string `validate:"required,url"`

	// HTTPTimeoutS bounds each HTTP request, in seconds.
	HTTPTimeoutS int `validate:"gt=0"`
}

// NewConfig reads from environment variables.
//
//	ATLAS_API_KEY               required
//	ATLAS_API_ENDPOINT          default https://api-atlas.nomic.ai
//	ATLAS_HTTP_TIMEOUT_SECONDS  default 30
func NewConfig() Config {
	timeout := 30
	if v := os.Getenv("ATLAS_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = n
		}
	}

	endpoint := DefaultEndpoint
	if v := os.Getenv("ATLAS_API_ENDPOINT"); v != "" {
		endpoint = v
	}

	return Config{
		APIKey:       os.Getenv("ATLAS_API_KEY"),
		Endpoint:     endpoint,
		HTTPTimeoutS: timeout,
	}
}

// Validate ensures required fields are present and well formed.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("atlas: invalid config: %w", err)
	}
	return nil
}
