package ics

import (
	"errors"
	"io"
	"strings"
	"time"
)

// Control property names and the component kinds the reader models, in
// canonical upper form.
const (
	propBegin = "BEGIN"
	propEnd   = "END"

	componentCalendar = "VCALENDAR"
	componentEvent    = "VEVENT"
)

type readerState int

const (
	// stateScanning is the initial state, outside any component.
	stateScanning readerState = iota
	// stateInWrapper is inside the VCALENDAR wrapper, which is
	// transparently unwrapped and never produces an item itself.
	stateInWrapper
	// stateSkipping is inside a component kind the reader does not
	// model; properties are discarded until its END marker.
	stateSkipping
)

// EventsReader pulls VEVENTs out of a property stream. It is
// pull-based: no work happens between calls to Next, and two readers
// over the same input yield identical sequences. A reader is not
// restartable; construct a fresh one to reparse.
type EventsReader struct {
	src   PropertySource
	zones ZoneResolver

	state  readerState
	skip   string      // component name being skipped
	resume readerState // state to restore once the skip closes
}

// Option configures an EventsReader.
type Option func(*EventsReader)

// WithZoneResolver overrides the IANA zone lookup used for TZID
// parameters. The default is time.LoadLocation.
func WithZoneResolver(resolve ZoneResolver) Option {
	return func(r *EventsReader) {
		r.zones = resolve
	}
}

// NewEventsReader parses the calendar text read from r.
func NewEventsReader(r io.Reader, opts ...Option) *EventsReader {
	return NewEventsSource(NewTokenizer(r), opts...)
}

// NewEventsSource parses properties from an already tokenized source.
func NewEventsSource(src PropertySource, opts ...Option) *EventsReader {
	r := &EventsReader{src: src, zones: time.LoadLocation}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next returns the next event, or the error that takes its place in
// the sequence. It returns io.EOF once the underlying stream ends; any
// other error is a single bad item and iteration may continue. A
// failed component never corrupts the ones that follow, except that
// skipping an unknown component is not depth-aware: a same-named
// component nested inside the skipped one closes the skip early.
func (r *EventsReader) Next() (Event, error) {
	for {
		p, err := r.src.Next()
		if err != nil {
			// io.EOF ends the sequence; tokenizer errors are items of it.
			return Event{}, err
		}
		name := strings.ToUpper(p.Name)

		if r.state == stateSkipping {
			if name == propEnd && strings.EqualFold(p.Value, r.skip) {
				r.state, r.skip = r.resume, ""
			}
			continue
		}

		switch {
		case name == propBegin:
			arg := strings.ToUpper(strings.TrimSpace(p.Value))
			switch arg {
			case "":
				return Event{}, ErrInvalidComponent
			case componentCalendar:
				r.state = stateInWrapper
			case componentEvent:
				return assembleEvent(r.src, r.zones)
			default:
				r.resume, r.state, r.skip = r.state, stateSkipping, arg
			}
		case name == propEnd && strings.EqualFold(p.Value, componentCalendar):
			r.state = stateScanning
		default:
			// Calendar-level properties (VERSION, PRODID, ...) and stray
			// END markers after a failed component carry no information
			// the reader needs.
		}
	}
}

// ReadAll drains the reader, returning every successfully parsed event
// and every error item in input order.
func ReadAll(r *EventsReader) (Events, []error) {
	events := make(Events, 0)
	var errs []error
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, ev)
	}
}
