package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/relayq/relayq/common"
	"github.com/relayq/relayq/pkg/relaycli"
)

var (
	daemonAddr  string
	wsURL       string
	title       string
	targetType  string
	targetLink  string
	delay       float64
	dataJSON    string
	autoHeaders bool
)

var sendFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "addr, a",
		Usage:       "daemon TCP submission address",
		EnvVar:      "RELAYQ_ADDR",
		Value:       common.DefaultAddr,
		Destination: &daemonAddr,
	},
	cli.StringFlag{
		Name:        "ws",
		Usage:       "submit over this WebSocket URL instead of TCP",
		EnvVar:      "RELAYQ_WS_URL",
		Destination: &wsURL,
	},
	cli.StringFlag{
		Name:        "title, t",
		Usage:       "display label of the task",
		Destination: &title,
	},
	cli.StringFlag{
		Name:        "type, k",
		Usage:       "dispatch kind: http or socket",
		Value:       "http",
		Destination: &targetType,
	},
	cli.StringFlag{
		Name:        "link, l",
		Usage:       "dispatch target (http(s):// URL or host:port)",
		Destination: &targetLink,
	},
	cli.Float64Flag{
		Name:        "delay, s",
		Usage:       "seconds to wait before the call fires",
		Destination: &delay,
	},
	cli.StringFlag{
		Name:        "data, D",
		Usage:       "request payload as a JSON object",
		Destination: &dataJSON,
	},
	cli.BoolFlag{
		Name:        "auto-headers, u",
		Usage:       "send with a random User-Agent header",
		Destination: &autoHeaders,
	},
}

func send(*cli.Context) error {
	var data map[string]any
	if dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
			return fmt.Errorf("--data is not a JSON object: %w", err)
		}
	}
	if autoHeaders {
		if data == nil {
			data = map[string]any{}
		}
		data["headers"] = "auto"
	}

	sub := &common.Submission{
		Title: title,
		Address: &common.SubmissionAddress{
			Type: targetType,
			Link: targetLink,
		},
		Settings: &common.SubmissionSettings{
			Time: &delay,
			Data: data,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := relaycli.NewClient(daemonAddr)
	var (
		res *common.SubmitResult
		err error
	)
	if wsURL != "" {
		res, err = c.SubmitWS(ctx, wsURL, sub)
	} else {
		res, err = c.Submit(ctx, sub)
	}
	if err != nil {
		return err
	}

	fmt.Printf("task %s (%s) scheduled, fires at %s, %d pending\n",
		res.ID, res.Title, res.Deadline.Local().Format(time.RFC3339), res.Pending)
	return nil
}
