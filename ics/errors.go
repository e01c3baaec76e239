package ics

import (
	"errors"
	"fmt"
)

// ErrInvalidComponent signals a BEGIN marker that carries no component
// name. It is yielded as one item of the event sequence; scanning
// resumes on the next pull.
var ErrInvalidComponent = errors.New("invalid component marker")

// MissingPropertyError reports a required property that was never seen
// before its event component closed.
type MissingPropertyError struct {
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("missing property %s", e.Property)
}

// InvalidPropertyValueError reports a recognized property whose value
// could not be coerced to its declared type. Found keeps the literal
// offending text for diagnostics.
type InvalidPropertyValueError struct {
	Property string
	Found    string
	Expected string
}

func (e *InvalidPropertyValueError) Error() string {
	return fmt.Sprintf("invalid property value %s:%q, expected %s", e.Property, e.Found, e.Expected)
}

// UnknownPropertyError is reserved for a future strict mode. The
// current schema ignores unknown properties, so it is never returned.
type UnknownPropertyError struct {
	Name string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("unknown property %s", e.Name)
}

// IsParseError reports whether err describes one malformed line or
// component, after which the stream keeps producing. Everything else
// (io.EOF aside) is a failure of the underlying stream and terminal.
func IsParseError(err error) bool {
	var (
		tokenize *TokenizeError
		missing  *MissingPropertyError
		invalid  *InvalidPropertyValueError
		unknown  *UnknownPropertyError
	)
	return errors.Is(err, ErrInvalidComponent) ||
		errors.As(err, &tokenize) ||
		errors.As(err, &missing) ||
		errors.As(err, &invalid) ||
		errors.As(err, &unknown)
}
