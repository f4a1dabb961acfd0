// Package stream routes (message, timestamp) events through a deduplicating store.
package stream

import (
	"fmt"
	"strings"
)

// Event is one input to the processor.
type Event struct {
	Message   string `yaml:"message"`
	Timestamp string `yaml:"timestamp"`
}

// IsReset reports whether the event is a reset trigger. Empty and
// whitespace-only messages are resets.
func (e Event) IsReset() bool {
	return strings.TrimSpace(e.Message) == ""
}

// Outcome is the result of handling one event.
type Outcome int

const (
	OutcomeLogged Outcome = iota
	OutcomeDuplicate
	OutcomeCleared
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLogged:
		return "logged"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Result pairs an event with its outcome.
type Result struct {
	Event   Event
	Outcome Outcome
}

// String renders the trace line for the result.
func (r Result) String() string {
	switch r.Outcome {
	case OutcomeLogged:
		return fmt.Sprintf("Logged message: '%s' at %s", r.Event.Message, r.Event.Timestamp)
	case OutcomeDuplicate:
		return fmt.Sprintf("Duplicate message ignored: '%s' at %s", r.Event.Message, r.Event.Timestamp)
	default:
		return fmt.Sprintf("System cleared at %s", r.Event.Timestamp)
	}
}
