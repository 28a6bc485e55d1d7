package shardqueue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config tunes a ShardExecutor. Zero values fall back to defaults in
// NewShardExecutor.
type Config struct {
	Shards         int           `envconfig:"SHARDS" default:"4"`
	QueueSize      int           `envconfig:"QUEUE_SIZE" default:"128"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`
	MaxAttempts    int           `envconfig:"MAX_ATTEMPTS" default:"4"`
	BaseBackoff    time.Duration `envconfig:"BASE_BACKOFF" default:"100ms"`
	MaxInterval    time.Duration `envconfig:"MAX_INTERVAL" default:"5s"`

	// ErrorHandler receives the final error of a job that gave up, or the
	// context error of a job skipped because its context was done.
	ErrorHandler func(error) `ignored:"true"`
}

// LoadConfig reads the executor settings from VITRINE_PERSIST_* variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("VITRINE_PERSIST", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
