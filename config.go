package loopkit

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the handful of tunables the runtime needs before any
// Looper exists. Its structure never shrinks, fields are only added,
// following the same rule epochq/internal/config/config.go states for its
// own Config. The zero value is valid and behaves like DefaultConfig.
type Config struct {
	// QueueCapacityHint sizes a new MessageQueue's initial heap capacity.
	// It is only a hint: the queue grows past it without error.
	QueueCapacityHint int `yaml:"queue_capacity_hint"`

	// ThreadNamePrefix is a default thread-name prefix. Nothing in this
	// package reads it: every HandlerThread is given its name explicitly,
	// and SharedWorker's thread is named "shared-worker".
	ThreadNamePrefix string `yaml:"thread_name_prefix"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config with production-safe defaults.
func DefaultConfig() Config {
	return Config{
		QueueCapacityHint: 16,
		ThreadNamePrefix:  "loopkit-worker",
		LogLevel:          "info",
	}
}

// LoadConfig reads a YAML file at path into a Config seeded with
// DefaultConfig, so a partial file only overrides the fields it sets. A
// missing file is reported via the returned error (checkable with
// errors.Is(err, os.ErrNotExist)) but still yields usable defaults.
// Callers that consider a missing config file non-fatal can ignore the
// error and use the returned Config.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		return cfg, fmt.Errorf("loopkit: read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("loopkit: parse config: %w", err)
	}
	return cfg, nil
}
