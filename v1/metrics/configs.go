package metrics

import (
	"os"
	"strconv"
)

// DefaultMetricsAddress is used when METRICS_ADDRESS is not set.
const DefaultMetricsAddress = ":9090"

// Config defines the configuration structure for the Prometheus metrics server.
type Config struct {
	// Address determines the network address where the Prometheus
	// metrics HTTP server listens, e.g. ":9090" or "127.0.0.1:9100".
	//
	// Default: ":9090"
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors controls whether the Go runtime, process and
	// build info collectors are registered.
	//
	// Default: true
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace prefixes every metric name, e.g. "atlas" gives
	// "atlas_batches_total".
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// ServiceName is attached to all metrics as the constant label service="<name>".
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}

// NewConfig reads the metrics configuration from the environment.
func NewConfig() Config {
	cfg := Config{
		Address:                 DefaultMetricsAddress,
		EnableDefaultCollectors: true,
		Namespace:               os.Getenv("METRICS_NAMESPACE"),
		ServiceName:             os.Getenv("METRICS_SERVICE_NAME"),
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("METRICS_ENABLE_DEFAULT_COLLECTORS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableDefaultCollectors = b
		}
	}
	return cfg
}
