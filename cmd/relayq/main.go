// Command relayq submits deferred tasks to a running relayqd daemon.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var (
	version = "dev"
	commit  string
	date    string
)

func main() {
	app := cli.NewApp()
	app.Name = "relayq"
	app.Usage = "schedule deferred HTTP and socket calls"
	app.Version = version
	app.Commands = []cli.Command{
		{
			Name:    "send",
			Aliases: []string{"s"},
			Usage:   "submit one deferred task to the daemon",
			Action:  send,
			Flags:   sendFlags,
		},
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "print the installed relayq version",
			Action: func(*cli.Context) error {
				fmt.Printf("relayq %s (%s %s)\n", version, commit, date)
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Printf("relayq: %s\n", err.Error())
		os.Exit(1)
	}
}
