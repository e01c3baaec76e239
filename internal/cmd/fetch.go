package cmd

import (
	"context"
	"fmt"
	"path"

	"git.sr.ht/~mariusor/lw"
	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/vevents/fetch"
	"git.sr.ht/~mariusor/vevents/storage/boltdb"
)

var FetchCmd = cli.Command{
	Name:  "fetch",
	Usage: "Fetches events from ICS feeds",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "url",
			Usage: "Which ICS feeds to load",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Output debug messages",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Don't persist events",
		},
	},
	Action: fetchFeeds,
}

func logger(debug bool) lw.Logger {
	if debug {
		return lw.Dev()
	}
	return lw.Prod()
}

func fetchFeeds(c *cli.Context) error {
	urls := c.StringSlice("url")
	if len(urls) == 0 {
		return fmt.Errorf("no feed urls have been passed")
	}
	debug := c.Bool("debug") || c.GlobalBool("debug")
	dryRun := c.Bool("dry-run")

	l := logger(debug)
	f := fetch.New(l)

	events, err := f.All(context.Background(), urls...)
	if err != nil {
		return err
	}

	st := boltdb.New(boltdb.Config{
		Path:  path.Join(c.GlobalString("path"), boltdb.DefaultFile),
		LogFn: l.Debugf,
		ErrFn: l.Errorf,
	})

	saved := 0
	for _, e := range events {
		if debug {
			l.Debugf("[%s] %s @ %s", e.UID, e.Summary, e.DTStart)
		}
		if dryRun {
			continue
		}
		old, ok := st.LoadEvent(e.UID, e.DTStart.Time)
		if ok && old.Equal(e) {
			continue
		}
		if err := st.SaveEvent(e); err != nil {
			l.Errorf("Error saving %s: %s", e.UID, err)
			continue
		}
		saved++
	}
	if !dryRun {
		l.Infof("saved %d of %d events", saved, len(events))
	}
	return nil
}
