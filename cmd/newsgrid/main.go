package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "newsgrid",
		Usage: "Keep the cloud security news page fresh from RSS and Atom feeds",
		Description: `Fetches every feed in the registry, keeps the entries that match the
		cloud security keywords and are not already linked from the site, and
		rewrites the news grid of the target page with the newest of them.

		Flags can generally be set via environment variables, e.g.:

		--news-file => NEWSGRID_NEWS_FILE=news.html
		--max-articles => NEWSGRID_MAX_ARTICLES=120
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"NEWSGRID_LOG_LEVEL"},
			},
		},
		Before: func(ctx *cli.Context) error {
			// stdout carries command output only
			log.SetOutput(os.Stderr)

			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			log.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			updateCmd(),
			dupesCmd(),
			addSourceCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func main() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
