package ics

import (
	"strings"
	"time"
)

// Kind discriminates the three shapes a DATE-TIME value can take.
type Kind int

const (
	// Naive is a wall-clock date and time with no zone information.
	Naive Kind = iota
	// UTC is anchored to UTC by the trailing Z designator.
	UTC
	// Zoned is a wall-clock date and time in a named IANA zone.
	Zoned
)

func (k Kind) String() string {
	switch k {
	case Naive:
		return "naive"
	case UTC:
		return "utc"
	case Zoned:
		return "zoned"
	}
	return "invalid"
}

// DateTime is a parsed DATE-TIME property value. Exactly one
// interpretation applies, per Kind. A value is never both UTC and
// zoned: the coercer rejects that combination outright.
type DateTime struct {
	Time time.Time `json:"time"`
	Kind Kind      `json:"kind"`
	TZID string    `json:"tzid,omitempty"`
}

func (d DateTime) Equal(other DateTime) bool {
	return d.Kind == other.Kind && d.TZID == other.TZID && d.Time.Equal(other.Time)
}

func (d DateTime) String() string {
	switch d.Kind {
	case UTC:
		return d.Time.Format(dateTimeLayout) + "Z"
	case Zoned:
		return d.Time.Format(dateTimeLayout) + " " + d.TZID
	}
	return d.Time.Format(dateTimeLayout)
}

// ZoneResolver maps an IANA zone identifier to a location. The default
// is time.LoadLocation; tests inject stubs so no zone database is
// consulted implicitly.
type ZoneResolver func(id string) (*time.Location, error)

// dateTimeLayout is the only accepted DATE-TIME form: no fractional
// seconds, no date-only values.
const dateTimeLayout = "20060102T150405"

const tzidParam = "TZID"

// parseDateTime coerces a DATE-TIME property. The Z suffix and a TZID
// parameter are mutually exclusive; a repeated TZID parameter resolves
// to its last occurrence.
func parseDateTime(property string, p Property, resolve ZoneResolver) (DateTime, error) {
	fail := func() (DateTime, error) {
		return DateTime{}, &InvalidPropertyValueError{
			Property: property,
			Found:    p.Value,
			Expected: "DATE-TIME",
		}
	}

	value, isUTC := strings.CutSuffix(p.Value, "Z")
	t, err := time.Parse(dateTimeLayout, value)
	if err != nil {
		return fail()
	}

	tzid, hasZone := p.lastParamValue(tzidParam)
	switch {
	case isUTC && hasZone:
		return fail()
	case hasZone:
		if tzid == "" {
			// time.LoadLocation maps "" to UTC; an empty id is not a zone
			return fail()
		}
		loc, err := resolve(tzid)
		if err != nil {
			return fail()
		}
		// time.Date normalizes local times that fall into a DST gap and
		// picks a single instant for ambiguous ones, so resolution is
		// deterministic and never fails.
		local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
		return DateTime{Time: local, Kind: Zoned, TZID: tzid}, nil
	case isUTC:
		return DateTime{Time: t, Kind: UTC}, nil
	default:
		return DateTime{Time: t, Kind: Naive}, nil
	}
}
