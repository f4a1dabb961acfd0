package store

import (
	"errors"
	"time"
)

var (
	// ErrInvalidExpirationTime is returned when expirationTime is not positive.
	ErrInvalidExpirationTime = errors.New("expirationTime must be positive")
	// ErrExpirationTimeNotWholeSeconds is returned when expirationTime has a sub-second part.
	ErrExpirationTimeNotWholeSeconds = errors.New("expirationTime must be a whole number of seconds")
	// ErrInvalidMaxSize is returned when maxSize is not positive.
	ErrInvalidMaxSize = errors.New("maxSize must be positive")
)

// Config holds the store configuration.
type Config struct {
	ExpirationTime time.Duration `yaml:"expirationTime" default:"10s"`
	MaxSize        int           `yaml:"maxSize" default:"100"`
}

// Validate validates the store configuration.
func (c *Config) Validate() error {
	if c.ExpirationTime <= 0 {
		return ErrInvalidExpirationTime
	}

	if c.ExpirationTime%time.Second != 0 {
		return ErrExpirationTimeNotWholeSeconds
	}

	if c.MaxSize <= 0 {
		return ErrInvalidMaxSize
	}

	return nil
}
