// Package ics extracts typed VEVENT records from iCalendar (RFC 5545)
// text. The tokenizer turns a byte stream into properties, and the
// EventsReader walks BEGIN/END component markers and assembles every
// VEVENT it finds into an Event.
package ics

import "strings"

// Property is one decoded content line: a case-insensitive name, the
// parameters that followed it and the raw text value. Consumers match
// names case-insensitively by folding them to upper case.
type Property struct {
	Name   string
	Params []Param
	Value  string
}

// Param is a single property parameter with its ordered values.
// Parameters may repeat on the same property.
type Param struct {
	Name   string
	Values []string
}

// lastParamValue returns the last value of the last parameter with the
// given name. Repeated parameters override earlier occurrences.
func (p Property) lastParamValue(name string) (string, bool) {
	for i := len(p.Params) - 1; i >= 0; i-- {
		if par := p.Params[i]; strings.EqualFold(par.Name, name) {
			if len(par.Values) == 0 {
				return "", false
			}
			return par.Values[len(par.Values)-1], true
		}
	}
	return "", false
}

// PropertySource produces the property stream the reader consumes.
// Next returns io.EOF once the stream is exhausted. A parse error (see
// IsParseError) reports a single malformed line; the source stays
// usable and the next call moves past it. Any other error is terminal:
// the source returns io.EOF from then on.
type PropertySource interface {
	Next() (Property, error)
}
