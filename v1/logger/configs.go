package logger

import (
	"os"
	"strconv"
)

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config controls how NewLoggerClient builds the underlying zap logger.
type Config struct {
	// Level is one of Debug, Info, Warning or Error. Anything else means Info.
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" envconfig:"LOGGER_SERVICE_NAME"`

	// EnableTracing makes the *WithContext methods add trace_id and span_id
	// fields taken from the span carried by the context.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`
}

// NewConfig reads the logger configuration from the environment.
func NewConfig() Config {
	cfg := Config{
		Level:       Info,
		ServiceName: os.Getenv("LOGGER_SERVICE_NAME"),
	}
	if v := os.Getenv("ZAP_LOGGER_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOGGER_ENABLE_TRACING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableTracing = b
		}
	}
	return cfg
}
