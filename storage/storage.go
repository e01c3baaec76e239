// Package storage defines how parsed events are persisted and read
// back. Implementations convert ics.Event values into whatever rows the
// backing store uses; the parser itself never touches persistence.
package storage

import (
	"time"

	"git.sr.ht/~mariusor/vevents/ics"
)

// DateCursor selects events whose start time falls inside a window
// anchored at T. A negative D selects the window before T.
type DateCursor struct {
	T time.Time
	D time.Duration
}

func Cursor(st time.Time, d time.Duration) DateCursor {
	return DateCursor{
		T: st,
		D: d,
	}
}

type Saver interface {
	SaveEvents(ics.Events) error
	SaveEvent(ics.Event) error
}

type Loader interface {
	LoadEvents(DateCursor) (ics.Events, error)
	LoadEvent(uid string, date time.Time) (ics.Event, bool)
}
