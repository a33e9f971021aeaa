package scheduling

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeRange reports an interval whose end does not come after its start.
var ErrInvalidTimeRange = errors.New("end time must be after start time")

// ParseError reports malformed time or date input. It is fatal to the single
// operation and is always returned to the caller.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func parseErr(field, value string, err error) *ParseError {
	return &ParseError{Field: field, Value: value, Err: err}
}
