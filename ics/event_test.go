package ics

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceItem struct {
	p   Property
	err error
}

// sliceSource feeds canned items to the assembler and reader, standing
// in for the tokenizer.
type sliceSource struct {
	items []sourceItem
	i     int
}

func (s *sliceSource) Next() (Property, error) {
	if s.i >= len(s.items) {
		return Property{}, io.EOF
	}
	it := s.items[s.i]
	s.i++
	return it.p, it.err
}

func source(props ...Property) *sliceSource {
	items := make([]sourceItem, len(props))
	for i, p := range props {
		items[i] = sourceItem{p: p}
	}
	return &sliceSource{items: items}
}

func TestAssembleEventMinimal(t *testing.T) {
	ev, err := assembleEvent(source(
		prop("UID", "abc"),
		prop("DTSTART", "20020110T090000Z"),
		prop("END", "VEVENT"),
	), time.LoadLocation)
	require.NoError(t, err)

	assert.Equal(t, "abc", ev.UID)
	assert.Equal(t, UTC, ev.DTStart.Kind)
	assert.EqualValues(t, 0, ev.Sequence)
	assert.Nil(t, ev.DTEnd)
	assert.Nil(t, ev.Created)
	assert.Empty(t, ev.Summary)
}

func TestAssembleEventAllFields(t *testing.T) {
	ev, err := assembleEvent(source(
		prop("UID", "abc"),
		prop("DTSTART", "20020110T090000Z"),
		prop("DTEND", "20020110T100000Z"),
		prop("DTSTAMP", "20020101T000000Z"),
		prop("CREATED", "20011231T120000Z"),
		prop("LAST-MODIFIED", "20020102T000000Z"),
		prop("SUMMARY", "Meeting"),
		prop("DESCRIPTION", `line one\nline two`),
		prop("LOCATION", `Room 1\, Floor 2`),
		prop("SEQUENCE", "3"),
		prop("END", "VEVENT"),
	), time.LoadLocation)
	require.NoError(t, err)

	assert.Equal(t, "Meeting", ev.Summary)
	assert.Equal(t, "line one\nline two", ev.Description)
	assert.Equal(t, "Room 1, Floor 2", ev.Location)
	assert.EqualValues(t, 3, ev.Sequence)
	require.NotNil(t, ev.DTEnd)
	require.NotNil(t, ev.DTStamp)
	require.NotNil(t, ev.Created)
	require.NotNil(t, ev.LastModified)
	assert.True(t, ev.DTEnd.Time.Equal(time.Date(2002, time.January, 10, 10, 0, 0, 0, time.UTC)))
}

func TestAssembleEventMissingRequired(t *testing.T) {
	_, err := assembleEvent(source(
		prop("DTSTART", "20020110T090000Z"),
		prop("SUMMARY", "Meeting"),
		prop("END", "VEVENT"),
	), time.LoadLocation)

	var missing *MissingPropertyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "UID", missing.Property)

	_, err = assembleEvent(source(
		prop("UID", "abc"),
		prop("END", "VEVENT"),
	), time.LoadLocation)

	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "DTSTART", missing.Property)
}

func TestAssembleEventUnknownPropertyIgnored(t *testing.T) {
	ev, err := assembleEvent(source(
		prop("UID", "abc"),
		prop("X-CUSTOM", "whatever"),
		prop("RRULE", "FREQ=DAILY"),
		prop("DTSTART", "20020110T090000Z"),
		prop("END", "VEVENT"),
	), time.LoadLocation)
	require.NoError(t, err)
	assert.Equal(t, "abc", ev.UID)
}

func TestAssembleEventLastOccurrenceWins(t *testing.T) {
	ev, err := assembleEvent(source(
		prop("UID", "abc"),
		prop("DTSTART", "20020110T090000Z"),
		prop("SEQUENCE", "1"),
		prop("SEQUENCE", "7"),
		prop("SUMMARY", "first"),
		prop("summary", "second"),
		prop("END", "VEVENT"),
	), time.LoadLocation)
	require.NoError(t, err)

	assert.EqualValues(t, 7, ev.Sequence)
	assert.Equal(t, "second", ev.Summary)
}

func TestAssembleEventCoercionFailureAborts(t *testing.T) {
	_, err := assembleEvent(source(
		prop("UID", "abc"),
		prop("DTSTART", "yesterday"),
		prop("END", "VEVENT"),
	), time.LoadLocation)

	var invalid *InvalidPropertyValueError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "DTSTART", invalid.Property)
	assert.Equal(t, "yesterday", invalid.Found)
}

func TestAssembleEventTokenizeErrorPropagates(t *testing.T) {
	bad := &TokenizeError{Line: 3, Text: "JUNK", Reason: "missing value separator"}
	src := &sliceSource{items: []sourceItem{
		{p: prop("UID", "abc")},
		{err: bad},
		{p: prop("DTSTART", "20020110T090000Z")},
		{p: prop("END", "VEVENT")},
	}}

	_, err := assembleEvent(src, time.LoadLocation)

	var tokErr *TokenizeError
	require.True(t, errors.As(err, &tokErr))
	assert.Equal(t, 3, tokErr.Line)
}

// The closing marker may be missing when the stream is cut short; the
// properties seen so far still assemble.
func TestAssembleEventUnterminated(t *testing.T) {
	ev, err := assembleEvent(source(
		prop("UID", "abc"),
		prop("DTSTART", "20020110T090000Z"),
	), time.LoadLocation)
	require.NoError(t, err)
	assert.Equal(t, "abc", ev.UID)
}
