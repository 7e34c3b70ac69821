// Command relayqd runs the relayq daemon: it listens for task
// submissions and fires each accepted task at its deadline.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/relayq/relayq/common"
	"github.com/relayq/relayq/internal/broker"
	"github.com/relayq/relayq/internal/server"
	"github.com/relayq/relayq/pkg/logger"
)

var (
	host         string
	port         int
	wsPort       int
	pollInterval time.Duration
	debug        bool
	logFile      string
)

var flags = []cli.Flag{
	cli.StringFlag{
		Name:        "host, H",
		Usage:       "address to bind the submission listener on",
		EnvVar:      "RELAYQ_HOST",
		Value:       common.DEF_HOST,
		Destination: &host,
	},
	cli.IntFlag{
		Name:        "port, p",
		Usage:       "port of the TCP submission listener",
		EnvVar:      "RELAYQ_PORT",
		Value:       common.DEF_PORT,
		Destination: &port,
	},
	cli.IntFlag{
		Name:        "ws-port, w",
		Usage:       "port of the WebSocket submission listener (0 disables it)",
		EnvVar:      "RELAYQ_WS_PORT",
		Destination: &wsPort,
	},
	cli.DurationFlag{
		Name:        "poll-interval, i",
		Usage:       "upper bound on scheduling slack",
		EnvVar:      "RELAYQ_POLL_INTERVAL",
		Value:       common.DEF_POLL_INTERVAL,
		Destination: &pollInterval,
	},
	cli.BoolFlag{
		Name:        "debug, d",
		Usage:       "log the pending task list after each submission",
		EnvVar:      "RELAYQ_DEBUG",
		Destination: &debug,
	},
	cli.StringFlag{
		Name:        "log-file, f",
		Usage:       "also append logs to this file",
		EnvVar:      "RELAYQ_LOG_FILE",
		Destination: &logFile,
	},
}

func run(_ *cli.Context) error {
	var l logger.Logger = logger.NewStandardLogger(log.Default())
	if logFile != "" {
		fl, err := logger.NewFileLogger(logFile)
		if err != nil {
			return err
		}
		l = logger.NewMultiLogger(l, fl)
	}
	defer l.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := broker.New(ctx, l, &broker.Options{
		PollInterval: pollInterval,
		Debug:        debug,
	})
	srv := server.NewServer(l, b, host, port)

	if wsPort > 0 {
		ws := server.NewWebServer(l, srv, host, wsPort)
		go func() {
			if err := ws.Start(); err != nil {
				l.Error("websocket listener: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ws.Shutdown(shutdownCtx); err != nil {
				l.Error("websocket shutdown: %v", err)
			}
		}()
	}

	return srv.Start(ctx)
}

func main() {
	app := cli.NewApp()
	app.Name = "relayqd"
	app.Usage = "deferred-request broker daemon"
	app.Flags = flags
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Printf("relayqd: %s\n", err.Error())
		os.Exit(1)
	}
}
