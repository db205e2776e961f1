package embedding

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/atlasdata/atlas-go/v1/batcher"
)

var validate = validator.New()

// Config controls which model is used and how requests are pooled.
type Config struct {
	Model    Model    `validate:"oneof=nomic-embed-text-v1 nomic-embed-text-v1.5"`
	TaskType TaskType `validate:"oneof=search_document search_query clustering classification"`

	// BatchSize is the number of texts sent per API call.
	BatchSize int `validate:"gt=0"`

	// FlushIntervalMS is the pooling window in milliseconds. The API allows
	// about two requests per second.
	FlushIntervalMS int `validate:"gt=0"`

	// MaxQueued bounds the number of texts waiting on this machine.
	MaxQueued int `validate:"gt=0"`
}

// DefaultConfig returns nomic-embed-text-v1.5 for search documents with the
// engine's default pooling.
func DefaultConfig() Config {
	return Config{
		Model:           ModelNomicEmbedTextV1_5,
		TaskType:        TaskSearchDocument,
		BatchSize:       batcher.DefaultBatchSize,
		FlushIntervalMS: int(batcher.DefaultFlushInterval / time.Millisecond),
		MaxQueued:       batcher.DefaultMaxQueued,
	}
}

// NewConfig reads from environment variables, falling back to DefaultConfig.
//
//	EMBEDDING_MODEL              nomic-embed-text-v1 | nomic-embed-text-v1.5
//	EMBEDDING_TASK_TYPE          search_document | search_query | clustering | classification
//	EMBEDDING_BATCH_SIZE         default 400
//	EMBEDDING_FLUSH_INTERVAL_MS  default 510
//	EMBEDDING_MAX_QUEUED         default 100000
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Model = Model(v)
	}
	if v := os.Getenv("EMBEDDING_TASK_TYPE"); v != "" {
		cfg.TaskType = TaskType(v)
	}
	cfg.BatchSize = envInt("EMBEDDING_BATCH_SIZE", cfg.BatchSize)
	cfg.FlushIntervalMS = envInt("EMBEDDING_FLUSH_INTERVAL_MS", cfg.FlushIntervalMS)
	cfg.MaxQueued = envInt("EMBEDDING_MAX_QUEUED", cfg.MaxQueued)

	return cfg
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// Validate checks the model and task type against the supported values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("embedding: invalid config: %w", err)
	}
	return nil
}

func (c Config) engineConfig() batcher.Config {
	cfg := batcher.DefaultConfig()
	cfg.Name = "embedding/" + string(c.Model)
	cfg.BatchSize = c.BatchSize
	cfg.FlushInterval = time.Duration(c.FlushIntervalMS) * time.Millisecond
	cfg.MaxQueued = c.MaxQueued
	return cfg
}
