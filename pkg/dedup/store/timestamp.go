package store

import (
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the only accepted textual timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	// ErrInvalidTimestamp is matched by every FormatError.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrYearOutOfRange is wrapped by a FormatError for year 0000.
	ErrYearOutOfRange = errors.New("year out of range")
)

// FormatError is returned when a timestamp does not match TimestampLayout.
type FormatError struct {
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("timestamp %q does not match %q: %s", e.Value, TimestampLayout, e.Err)
	}

	return fmt.Sprintf("timestamp %q does not match %q", e.Value, TimestampLayout)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is reports ErrInvalidTimestamp as a match so callers can use errors.Is.
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidTimestamp
}

// ParseTimestamp parses text in TimestampLayout as UTC.
func ParseTimestamp(text string) (time.Time, error) {
	// time.Parse tolerates a trailing fractional second, the layout does not.
	if len(text) != len(TimestampLayout) {
		return time.Time{}, &FormatError{Value: text}
	}

	ts, err := time.Parse(TimestampLayout, text)
	if err != nil {
		return time.Time{}, &FormatError{Value: text, Err: err}
	}

	if ts.Year() < 1 {
		return time.Time{}, &FormatError{Value: text, Err: ErrYearOutOfRange}
	}

	return ts, nil
}
