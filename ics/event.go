package ics

import (
	"errors"
	"io"
	"strings"
)

// Event is one fully assembled VEVENT. Construction is all or nothing:
// a value only exists once every required property was seen and every
// recognized property coerced, so no partially parsed event escapes.
type Event struct {
	UID          string    `json:"uid"`
	DTStart      DateTime  `json:"dtstart"`
	DTEnd        *DateTime `json:"dtend,omitempty"`
	DTStamp      *DateTime `json:"dtstamp,omitempty"`
	Created      *DateTime `json:"created,omitempty"`
	LastModified *DateTime `json:"last_modified,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	Sequence     int32     `json:"sequence"`
}

type Events []Event

func (e Event) Equal(other Event) bool {
	return e.UID == other.UID &&
		e.DTStart.Equal(other.DTStart) &&
		dateTimePtrEqual(e.DTEnd, other.DTEnd) &&
		dateTimePtrEqual(e.DTStamp, other.DTStamp) &&
		dateTimePtrEqual(e.Created, other.Created) &&
		dateTimePtrEqual(e.LastModified, other.LastModified) &&
		e.Summary == other.Summary &&
		e.Description == other.Description &&
		e.Location == other.Location &&
		e.Sequence == other.Sequence
}

func dateTimePtrEqual(a, b *DateTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// fieldSpec is one row of the event schema: the canonical property
// name, whether the event is invalid without it, and how a matching
// property lands in the struct.
type fieldSpec struct {
	name     string
	required bool
	assign   func(*Event, Property, ZoneResolver) error
}

func dateTimeField(name string, dst func(*Event) **DateTime) fieldSpec {
	return fieldSpec{name: name, assign: func(e *Event, p Property, zones ZoneResolver) error {
		dt, err := parseDateTime(name, p, zones)
		if err != nil {
			return err
		}
		*dst(e) = &dt
		return nil
	}}
}

func textField(name string, dst func(*Event) *string) fieldSpec {
	return fieldSpec{name: name, assign: func(e *Event, p Property, _ ZoneResolver) error {
		*dst(e) = unescapeText(p.Value)
		return nil
	}}
}

// eventFields is the schema, one row per supported property. Everything
// else in a VEVENT body is ignored so future properties never break
// parsing. Repeated properties overwrite: the last occurrence wins.
var eventFields = []fieldSpec{
	{name: "UID", required: true, assign: func(e *Event, p Property, _ ZoneResolver) error {
		e.UID = unescapeText(p.Value)
		return nil
	}},
	{name: "DTSTART", required: true, assign: func(e *Event, p Property, zones ZoneResolver) error {
		dt, err := parseDateTime("DTSTART", p, zones)
		if err != nil {
			return err
		}
		e.DTStart = dt
		return nil
	}},
	dateTimeField("DTEND", func(e *Event) **DateTime { return &e.DTEnd }),
	dateTimeField("DTSTAMP", func(e *Event) **DateTime { return &e.DTStamp }),
	dateTimeField("CREATED", func(e *Event) **DateTime { return &e.Created }),
	dateTimeField("LAST-MODIFIED", func(e *Event) **DateTime { return &e.LastModified }),
	textField("SUMMARY", func(e *Event) *string { return &e.Summary }),
	textField("DESCRIPTION", func(e *Event) *string { return &e.Description }),
	textField("LOCATION", func(e *Event) *string { return &e.Location }),
	{name: "SEQUENCE", assign: func(e *Event, p Property, _ ZoneResolver) error {
		n, err := parseInt("SEQUENCE", p)
		if err != nil {
			return err
		}
		e.Sequence = n
		return nil
	}},
}

var eventSchema = func() map[string]fieldSpec {
	m := make(map[string]fieldSpec, len(eventFields))
	for _, f := range eventFields {
		m[f.name] = f
	}
	return m
}()

// assembleEvent consumes properties up to the END:VEVENT marker, or the
// end of the stream, and builds the event. The first tokenizer or
// coercion error aborts the component and becomes its single result.
func assembleEvent(src PropertySource, zones ZoneResolver) (Event, error) {
	var ev Event
	seen := make(map[string]bool, len(eventFields))

	for {
		p, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Event{}, err
		}
		name := strings.ToUpper(p.Name)
		if name == propEnd && strings.EqualFold(p.Value, componentEvent) {
			break
		}
		field, ok := eventSchema[name]
		if !ok {
			continue
		}
		if err := field.assign(&ev, p, zones); err != nil {
			return Event{}, err
		}
		seen[name] = true
	}

	for _, field := range eventFields {
		if field.required && !seen[field.name] {
			return Event{}, &MissingPropertyError{Property: field.name}
		}
	}
	return ev, nil
}
