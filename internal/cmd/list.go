package cmd

import (
	"fmt"
	"path"
	"time"

	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/vevents/storage"
	"git.sr.ht/~mariusor/vevents/storage/boltdb"
)

var ListCmd = cli.Command{
	Name:  "list",
	Usage: "Lists already saved events",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Output debug messages",
		},
		&cli.StringFlag{
			Name:  "start",
			Usage: "Date at which to start",
			Value: defaultStartTime.Format("2006-01-02"),
		},
		&cli.DurationFlag{
			Name:  "end",
			Usage: "Date interval to check",
			Value: defaultDuration,
		},
	},
	Action: listEvents,
}

func listEvents(c *cli.Context) error {
	start := defaultStartTime
	if sf := c.String("start"); len(sf) > 0 {
		if sfp, err := time.Parse("2006-01-02", sf); err == nil {
			start = sfp
		}
	}
	duration := c.Duration("end")
	debug := c.Bool("debug") || c.GlobalBool("debug")

	l := logger(debug)
	st := boltdb.New(boltdb.Config{
		Path:  path.Join(c.GlobalString("path"), boltdb.DefaultFile),
		LogFn: l.Debugf,
		ErrFn: l.Errorf,
	})

	if debug {
		l.Debugf("Loading events for period: %s - %s", start.Format("2006-01-02 Mon, 15:04"), start.Add(duration).Format("2006-01-02 Mon, 15:04"))
	}
	events, err := st.LoadEvents(storage.Cursor(start, duration))
	if err != nil {
		return fmt.Errorf("unable to load events: %w", err)
	}
	if len(events) == 0 {
		fmt.Printf("nothing found\n")
		return nil
	}
	for _, e := range events {
		fmt.Printf("[%s] %s @ %s\n", e.UID, e.Summary, e.DTStart)
		if e.Location != "" {
			fmt.Printf("\t%s\n", e.Location)
		}
		if e.Description != "" {
			fmt.Printf("\t%s\n", e.Description)
		}
	}
	return nil
}
