package stream

import (
	"errors"
	"time"
)

var (
	// ErrEventsPathRequired is returned when no events file is configured
	ErrEventsPathRequired = errors.New("source path is required")
	// ErrInvalidRetryAttempts is returned when retryAttempts is zero
	ErrInvalidRetryAttempts = errors.New("retryAttempts must be at least 1")
)

// Config holds the event source configuration.
type Config struct {
	Path          string        `yaml:"path" default:"events.yaml"`
	RetryInterval time.Duration `yaml:"retryInterval" default:"1s"`
	RetryAttempts uint          `yaml:"retryAttempts" default:"3"`
}

// Validate validates the event source configuration.
func (c *Config) Validate() error {
	if c.Path == "" {
		return ErrEventsPathRequired
	}

	if c.RetryAttempts == 0 {
		return ErrInvalidRetryAttempts
	}

	return nil
}
