package cmd

import (
	"context"
	"fmt"
	"syscall"
	"time"

	w "git.sr.ht/~mariusor/wrapper"
	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/vevents/ical"
)

var ServerCmd = cli.Command{
	Name:  "start",
	Usage: "Starts the iCal serving server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Output debug messages",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Set hostname on which to listen to",
			Value: "localhost",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "Set port on which to listen to",
			Value: 9999,
		},
	},
	Action: serverStart,
}

var wait = 100 * time.Millisecond

func serverStart(c *cli.Context) error {
	listen := fmt.Sprintf("%s:%d", c.String("host"), c.Int("port"))
	debug := c.Bool("debug") || c.GlobalBool("debug")

	l := logger(debug)
	l.Infof("Listening on %s", listen)

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	path := c.GlobalString("path")
	// Get start/stop functions for the http server
	srvRun, srvStop := w.HttpServer(w.Handler(ical.Routes(path)), w.OnTCP(listen))
	w.RegisterSignalHandlers(w.SignalHandlers{
		syscall.SIGHUP: func(_ chan int) {
			l.Infof("SIGHUP received, reloading configuration")
		},
		syscall.SIGINT: func(exit chan int) {
			l.Infof("SIGINT received, stopping")
			exit <- 0
		},
		syscall.SIGTERM: func(exit chan int) {
			l.Infof("SIGTERM received, force stopping")
			exit <- 0
		},
		syscall.SIGQUIT: func(exit chan int) {
			l.Infof("SIGQUIT received, force stopping with core-dump")
			exit <- 0
		},
	}).Exec(func() error {
		if err := srvRun(); err != nil {
			l.Errorf("Error: %s", err)
			return err
		}
		var err error
		// Doesn't block if no connections, but will otherwise wait until the timeout deadline.
		go func(e error) {
			if err = srvStop(ctx); err != nil {
				l.Errorf("Error: %s", err)
			}
		}(err)
		return err
	})

	return nil
}
