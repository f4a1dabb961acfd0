package stream

import (
	"context"
	"fmt"
	"os"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// File is the on-disk layout of an events file.
type File struct {
	Events []Event `yaml:"events"`
}

// Loader reads events from a YAML file, retrying while the file is missing
// or unreadable.
type Loader struct {
	log    logrus.FieldLogger
	config *Config
}

// NewLoader creates a new Loader.
func NewLoader(log logrus.FieldLogger, config *Config) *Loader {
	return &Loader{
		log:    log.WithField("component", "loader").WithField("path", config.Path),
		config: config,
	}
}

// Load reads and decodes the events file.
func (l *Loader) Load(ctx context.Context) ([]Event, error) {
	var events []Event

	err := retry.Do(
		func() error {
			data, err := os.ReadFile(l.config.Path)
			if err != nil {
				return err
			}

			decoded, err := Decode(data)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("decoding events: %w", err))
			}

			events = decoded

			return nil
		},
		retry.Context(ctx),
		retry.Attempts(l.config.RetryAttempts),
		retry.Delay(l.config.RetryInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			l.log.WithError(err).WithField("attempt", n+1).Warn("failed to read events, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}

	l.log.WithField("events", len(events)).Info("loaded events")

	return events, nil
}

// Decode parses an events document.
func Decode(data []byte) ([]Event, error) {
	file := File{}
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, err
	}

	return file.Events, nil
}
