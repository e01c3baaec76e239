// Package ical re-serves stored events as an iCal feed.
package ical

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/soh335/ical"

	"git.sr.ht/~mariusor/vevents/ics"
	"git.sr.ht/~mariusor/vevents/storage"
	"git.sr.ht/~mariusor/vevents/storage/boltdb"
)

type handler struct {
	Version string
	path    string
}

func NewHandler(storagePath string) *handler {
	return &handler{Version: "HEAD", path: storagePath}
}

// one year, minus a second
var yearDuration = 8759*time.Hour + 59*time.Minute + 59*time.Second

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	// /{year}
	year := now.Year()
	if seg := strings.Trim(r.URL.Path, "/"); seg != "" {
		y, err := strconv.Atoi(seg)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, "Invalid year %s", seg)
			return
		}
		year = y
	}
	date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	st := boltdb.New(boltdb.Config{
		Path: path.Join(h.path, boltdb.DefaultFile),
	})

	events, err := st.LoadEvents(storage.DateCursor{T: date, D: yearDuration})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "%s", err)
		return
	}

	cal := ical.NewBasicVCalendar()
	cal.PRODID = fmt.Sprintf("-//vevents//NONSGML v%s//EN", h.Version)
	cal.VERSION = "2.0"

	name := "vevents"
	description := fmt.Sprintf("events for %d", year)

	cal.NAME = name
	cal.X_WR_CALNAME = name
	cal.DESCRIPTION = description
	cal.X_WR_CALDESC = description

	cal.REFRESH_INTERVAL = "PT1H"
	cal.X_PUBLISHED_TTL = "PT1H"

	cal.CALSCALE = "GREGORIAN"
	cal.METHOD = "PUBLISH"

	for _, ev := range events {
		cal.VComponent = append(cal.VComponent, toVEvent(ev))
	}

	b := &bytes.Buffer{}
	if err := cal.Encode(b); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "%s", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Write(b.Bytes())
}

func toVEvent(ev ics.Event) *ical.VEvent {
	start := ev.DTStart.Time
	end := start
	if ev.DTEnd != nil {
		end = ev.DTEnd.Time
	}
	stamp := start
	if ev.DTStamp != nil {
		stamp = ev.DTStamp.Time
	} else if ev.LastModified != nil {
		stamp = ev.LastModified.Time
	}
	tz := "UTC"
	if ev.DTStart.Kind == ics.Zoned {
		tz = ev.DTStart.TZID
	}

	return &ical.VEvent{
		UID:         ev.UID,
		DTSTAMP:     stamp,
		DTSTART:     start,
		DTEND:       end,
		SUMMARY:     ev.Summary,
		DESCRIPTION: ev.Description,
		TZID:        tz,
	}
}
