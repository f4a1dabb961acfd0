package stream

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethpandaops/logdedup/pkg/dedup/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2023, 8, 3, 10, 0, 0, 0, time.UTC)

func at(seconds int) string {
	return start.Add(time.Duration(seconds) * time.Second).Format(store.TimestampLayout)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	s, err := store.NewWithMetrics(log, &store.Config{ExpirationTime: 10 * time.Second, MaxSize: 100}, store.NewMetricsWithRegisterer("test", nil))
	require.NoError(t, err)

	return s
}

func newTestProcessor() *Processor {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return NewProcessor(log, NewMetricsWithRegisterer("test", nil))
}

func TestProcess_SimultaneousMessages(t *testing.T) {
	s := newTestStore(t)
	ts := at(130)

	events := []Event{
		{Message: "Message A", Timestamp: ts},
		{Message: "Message B", Timestamp: ts},
		{Message: "Message A", Timestamp: ts},
		{Message: "Message C", Timestamp: ts},
		{Message: "Message B", Timestamp: ts},
		{Message: "Message D", Timestamp: ts},
	}

	lines, err := Process(s, events)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Logged message: 'Message A' at 2023-08-03 10:02:10",
		"Logged message: 'Message B' at 2023-08-03 10:02:10",
		"Duplicate message ignored: 'Message A' at 2023-08-03 10:02:10",
		"Logged message: 'Message C' at 2023-08-03 10:02:10",
		"Duplicate message ignored: 'Message B' at 2023-08-03 10:02:10",
		"Logged message: 'Message D' at 2023-08-03 10:02:10",
	}, lines)

	assert.Len(t, s.LastSeen(), 4)
}

func TestProcess_OverflowThenRepeats(t *testing.T) {
	s := newTestStore(t)

	events := make([]Event, 0, 110)
	for i := 0; i < 105; i++ {
		events = append(events, Event{Message: fmt.Sprintf("Message %d", i), Timestamp: at(i)})
	}

	for i := 0; i < 5; i++ {
		events = append(events, Event{Message: fmt.Sprintf("Message %d", i), Timestamp: at(125 + i)})
	}

	lines, err := Process(s, events)
	require.NoError(t, err)
	require.Len(t, lines, len(events))

	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("Logged message: '%s' at %s", events[i].Message, events[i].Timestamp), line)
	}

	// Flushed on Message 100, then holds Message 100..104 plus the five repeats.
	assert.Equal(t, 10, s.Len())
	assert.Len(t, s.History(), 10)
}

func TestProcess_ResetEvents(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{name: "empty", message: ""},
		{name: "spaces", message: "   "},
		{name: "tabs and newlines", message: "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)

			lines, err := Process(s, []Event{
				{Message: "hello", Timestamp: at(0)},
				{Message: tt.message, Timestamp: at(0)},
				{Message: tt.message, Timestamp: at(1)},
				{Message: "hello", Timestamp: at(2)},
			})
			require.NoError(t, err)

			assert.Equal(t, []string{
				"Logged message: 'hello' at 2023-08-03 10:00:00",
				"System cleared at 2023-08-03 10:00:00",
				"System cleared at 2023-08-03 10:00:01",
				"Logged message: 'hello' at 2023-08-03 10:00:02",
			}, lines)
		})
	}
}

func TestProcessor_Run_Outcomes(t *testing.T) {
	s := newTestStore(t)

	results, err := newTestProcessor().Run(s, []Event{
		{Message: "a", Timestamp: at(0)},
		{Message: "a", Timestamp: at(1)},
		{Message: "", Timestamp: at(5)},
	})
	require.NoError(t, err)

	outcomes := make([]Outcome, 0, len(results))
	for _, r := range results {
		outcomes = append(outcomes, r.Outcome)
	}

	assert.Equal(t, []Outcome{OutcomeLogged, OutcomeDuplicate, OutcomeCleared}, outcomes)
	assert.Equal(t, 0, s.Len())
}

func TestProcess_MalformedTimestampAborts(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{name: "message event", event: Event{Message: "b", Timestamp: "yesterday"}},
		{name: "reset event", event: Event{Message: "", Timestamp: "2023-08-03"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)

			lines, err := Process(s, []Event{{Message: "a", Timestamp: at(0)}, tt.event})
			assert.Nil(t, lines)
			require.Error(t, err)
			assert.ErrorIs(t, err, store.ErrInvalidTimestamp)

			var formatErr *store.FormatError
			assert.True(t, errors.As(err, &formatErr))
		})
	}
}

func TestProcess_DoesNotMutateInput(t *testing.T) {
	s := newTestStore(t)

	events := []Event{{Message: "a", Timestamp: at(0)}, {Message: " ", Timestamp: at(1)}}
	original := append([]Event(nil), events...)

	_, err := Process(s, events)
	require.NoError(t, err)

	assert.Equal(t, original, events)
}

func TestProcess_DoesNotLog(t *testing.T) {
	var buf bytes.Buffer

	std := logrus.StandardLogger()
	original := std.Out
	std.SetOutput(&buf)
	defer std.SetOutput(original)

	_, err := Process(newTestStore(t), []Event{{Message: "a", Timestamp: at(0)}})
	require.NoError(t, err)

	assert.Empty(t, buf.String())
}

type fakeStore struct {
	records []string
	resets  []string
}

func (f *fakeStore) Record(message, timestampText string) (bool, error) {
	f.records = append(f.records, message)

	return true, nil
}

func (f *fakeStore) ResetIfAbsent(timestampText string) error {
	f.resets = append(f.resets, timestampText)

	return nil
}

func TestProcess_Routing(t *testing.T) {
	f := &fakeStore{}

	_, err := Process(f, []Event{
		{Message: "x", Timestamp: "t1"},
		{Message: "", Timestamp: "t2"},
		{Message: " y ", Timestamp: "t3"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"x", " y "}, f.records)
	assert.Equal(t, []string{"t2"}, f.resets)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "logged", OutcomeLogged.String())
	assert.Equal(t, "duplicate", OutcomeDuplicate.String())
	assert.Equal(t, "cleared", OutcomeCleared.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
