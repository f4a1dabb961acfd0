package stream

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store is the deduplicating store the processor drives.
type Store interface {
	Record(message, timestampText string) (bool, error)
	ResetIfAbsent(timestampText string) error
}

// Processor classifies events and applies them to a store.
type Processor struct {
	log     logrus.FieldLogger
	metrics *Metrics
}

// NewProcessor creates a new Processor.
func NewProcessor(log logrus.FieldLogger, metrics *Metrics) *Processor {
	return &Processor{
		log:     log.WithField("component", "stream"),
		metrics: metrics,
	}
}

// Run applies events to store in order and returns one result per event.
// The first malformed timestamp aborts the run and no results are returned.
func (p *Processor) Run(store Store, events []Event) ([]Result, error) {
	log := p.log.WithField("run_id", uuid.NewString())

	results := make([]Result, 0, len(events))
	counts := make(map[Outcome]int, 3)

	for i, event := range events {
		outcome, err := apply(store, event)
		if err != nil {
			log.WithError(err).WithField("index", i).Error("aborting stream")

			return nil, fmt.Errorf("event %d: %w", i, err)
		}

		results = append(results, Result{Event: event, Outcome: outcome})
		counts[outcome]++

		if p.metrics != nil {
			p.metrics.IncEvents(outcome)
		}
	}

	log.WithFields(logrus.Fields{
		"events":     len(events),
		"logged":     counts[OutcomeLogged],
		"duplicates": counts[OutcomeDuplicate],
		"cleared":    counts[OutcomeCleared],
	}).Info("processed stream")

	return results, nil
}

func apply(store Store, event Event) (Outcome, error) {
	if event.IsReset() {
		if err := store.ResetIfAbsent(event.Timestamp); err != nil {
			return OutcomeCleared, err
		}

		return OutcomeCleared, nil
	}

	admitted, err := store.Record(event.Message, event.Timestamp)
	if err != nil {
		return OutcomeDuplicate, err
	}

	if admitted {
		return OutcomeLogged, nil
	}

	return OutcomeDuplicate, nil
}

// Process applies events to store and returns the trace lines.
func Process(store Store, events []Event) ([]string, error) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	results, err := NewProcessor(log, nil).Run(store, events)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(results))
	for _, result := range results {
		lines = append(lines, result.String())
	}

	return lines, nil
}
