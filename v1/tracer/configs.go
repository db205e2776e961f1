package tracer

import (
	"os"
	"strconv"
)

// Config defines the configuration for the OpenTelemetry tracer.
type Config struct {
	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv is recorded as deployment.environment and "environment".
	AppEnv string `yaml:"app_env" envconfig:"APP_ENV"`

	// EnableExport turns on the OTLP/HTTP exporter. The exporter itself is
	// configured through the standard OTEL_EXPORTER_OTLP_* variables.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}

// NewConfig reads the tracer configuration from the environment.
func NewConfig() Config {
	cfg := Config{
		ServiceName: os.Getenv("TRACER_SERVICE_NAME"),
		AppEnv:      os.Getenv("APP_ENV"),
	}
	if v := os.Getenv("TRACER_ENABLE_EXPORT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableExport = b
		}
	}
	return cfg
}
