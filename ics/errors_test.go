package ics

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsParseError(t *testing.T) {
	for _, err := range []error{
		ErrInvalidComponent,
		&TokenizeError{Line: 1, Reason: "missing value separator"},
		&MissingPropertyError{Property: "UID"},
		&InvalidPropertyValueError{Property: "DTSTART", Expected: "DATE-TIME"},
		&UnknownPropertyError{Name: "X-THING"},
		fmt.Errorf("component 3: %w", &MissingPropertyError{Property: "UID"}),
	} {
		assert.Truef(t, IsParseError(err), "%v", err)
	}

	for _, err := range []error{
		io.EOF,
		io.ErrUnexpectedEOF,
		errors.New("read tcp: connection reset by peer"),
	} {
		assert.Falsef(t, IsParseError(err), "%v", err)
	}
}
