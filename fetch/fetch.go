// Package fetch retrieves remote ICS feeds and runs them through the
// event parser.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"git.sr.ht/~mariusor/lw"
	"golang.org/x/sync/errgroup"

	"git.sr.ht/~mariusor/vevents/ics"
)

var defaultTimeout = time.Minute

// Fetcher downloads ICS feeds over HTTP. One bad component inside a
// feed is logged and skipped; it never drops the rest of the feed. A
// broken stream (a reset or truncated body) fails the whole feed.
type Fetcher struct {
	cl     *http.Client
	logger lw.Logger
}

func New(logger lw.Logger) *Fetcher {
	return &Fetcher{
		cl:     &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
}

// Events downloads one feed and parses every VEVENT in it.
func (f *Fetcher) Events(ctx context.Context, url string) (ics.Events, error) {
	body, err := f.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	events := make(ics.Events, 0)
	r := ics.NewEventsReader(body)
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !ics.IsParseError(err) {
				return nil, fmt.Errorf("unable to read feed %s: %w", url, err)
			}
			f.logger.Warnf("skipping invalid component in %s: %s", url, err)
			continue
		}
		events = append(events, ev)
	}
	f.logger.Infof("loaded %d events from %s", len(events), url)
	return events, nil
}

// All fetches multiple feeds concurrently and flattens their events in
// the order the urls were given.
func (f *Fetcher) All(ctx context.Context, urls ...string) (ics.Events, error) {
	g, gtx := errgroup.WithContext(ctx)

	results := make([]ics.Events, len(urls))
	for i, u := range urls {
		g.Go(func() error {
			events, err := f.Events(gtx, u)
			if err != nil {
				return fmt.Errorf("unable to load feed %s: %w", u, err)
			}
			results[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	events := make(ics.Events, 0)
	for _, evs := range results {
		events = append(events, evs...)
	}
	return events, nil
}

func (f *Fetcher) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build request for %s: %w", url, err)
	}
	res, err := f.cl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to load feed %s: %w", url, err)
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("unexpected status %s for %s", res.Status, url)
	}
	return res.Body, nil
}
