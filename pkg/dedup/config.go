package dedup

import (
	"fmt"

	"github.com/ethpandaops/logdedup/pkg/dedup/store"
	"github.com/ethpandaops/logdedup/pkg/dedup/stream"
)

type Config struct {
	LoggingLevel string        `yaml:"logging" default:"info"`
	MetricsAddr  string        `yaml:"metricsAddr"`
	Linger       bool          `yaml:"linger"`
	Store        store.Config  `yaml:"store"`
	Source       stream.Config `yaml:"source"`
}

func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	return nil
}
