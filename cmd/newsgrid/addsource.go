package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/cqroot/prompt"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/shanehull/newsgrid/internal/fetch"
	"github.com/shanehull/newsgrid/internal/registry"
	"github.com/shanehull/newsgrid/internal/safety"
	"github.com/shanehull/newsgrid/internal/types"
)

var errAborted = errors.New("aborted")

func addSourceCmd() *cli.Command {
	return &cli.Command{
		Name:  "add-source",
		Usage: "Vet a new feed and append it to the registry",
		Description: `Asks for a source name and feed URL (unless given as flags), checks the
URL for unsafe targets, fetches it to confirm it looks like RSS or Atom, and appends
it to the end of the registry file. Existing entries are never reordered.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Source name, e.g. \"AWS Security Blog\"",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Feed URL (RSS or Atom)",
			},
			feedsFlag(),
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Accept warnings without asking",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: fetch.DefaultTimeout,
				Usage: "Fetch timeout for the candidate feed",
			},
		},
		Action: func(ctx *cli.Context) error {
			a := &sourceAdder{
				out:     ctx.App.Writer,
				yes:     ctx.Bool("yes"),
				check:   (&safety.Checker{Resolver: net.DefaultResolver}).Check,
				fetcher: fetch.New(ctx.Duration("timeout")),
				ask:     askInput,
				confirm: askConfirm,
			}

			src, err := a.run(ctx.Context, ctx.String("name"), ctx.String("url"), ctx.String("feeds"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			fmt.Fprintf(ctx.App.Writer, "Added %s (%s) to %s.\n", src.Name, src.URL, ctx.String("feeds"))
			return nil
		},
	}
}

func askInput(question string) (string, error) {
	return prompt.New().Ask(question).Input("")
}

func askConfirm(question string) (bool, error) {
	answer, err := prompt.New().Ask(question).Choose([]string{"Yes", "No"})
	if err != nil {
		return false, err
	}
	return answer == "Yes", nil
}

type sourceAdder struct {
	out     io.Writer
	yes     bool
	check   func(ctx context.Context, url string) safety.Verdict
	fetcher feedFetcher
	ask     func(question string) (string, error)
	confirm func(question string) (bool, error)
}

type feedFetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

func (a *sourceAdder) proceed(question string) (bool, error) {
	if a.yes {
		return true, nil
	}
	return a.confirm(question)
}

func (a *sourceAdder) required(question, value string) (string, error) {
	for strings.TrimSpace(value) == "" {
		v, err := a.ask(question)
		if err != nil {
			return "", err
		}
		value = v
	}
	return strings.TrimSpace(value), nil
}

func (a *sourceAdder) run(ctx context.Context, name, url, feedsPath string) (types.FeedSource, error) {
	name, err := a.required("Source name (e.g., AWS Security Blog):", name)
	if err != nil {
		return types.FeedSource{}, err
	}

	// A URL given as a flag is checked once; a prompted one may be retried.
	interactive := strings.TrimSpace(url) == ""
	for {
		if interactive {
			url = ""
		}
		url, err = a.required("Feed URL (RSS or Atom):", url)
		if err != nil {
			return types.FeedSource{}, err
		}

		ok, err := a.vet(ctx, url, interactive)
		if err != nil {
			return types.FeedSource{}, err
		}
		if ok {
			break
		}
		if !interactive {
			return types.FeedSource{}, errAborted
		}
	}

	sources, err := registry.Load(feedsPath)
	if errors.Is(err, os.ErrNotExist) {
		sources, err = registry.Default()
	}
	if err != nil {
		return types.FeedSource{}, err
	}

	src := types.FeedSource{Name: name, URL: url}
	if err := registry.Contains(sources, src); err != nil {
		return types.FeedSource{}, err
	}
	if err := registry.Append(feedsPath, src); err != nil {
		return types.FeedSource{}, err
	}
	return src, nil
}

// vet reports whether url may be added. A false result without error means the user
// declined; the caller decides whether to ask for another URL.
func (a *sourceAdder) vet(ctx context.Context, url string, interactive bool) (bool, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		fmt.Fprintln(a.out, "Error: URL must start with http:// or https://")
		if interactive {
			return false, nil
		}
		return false, errors.New("URL must start with http:// or https://")
	}

	verdict := a.check(ctx, url)
	if !verdict.Safe {
		fmt.Fprintln(a.out, "Error: URL failed safety checks:")
		for _, e := range verdict.Errors {
			fmt.Fprintf(a.out, "  - %s\n", e)
		}
		if !interactive {
			return false, errors.New("URL failed safety checks")
		}
		retry, err := a.confirm("Try a different URL?")
		if err != nil {
			return false, err
		}
		if !retry {
			return false, errAborted
		}
		return false, nil
	}

	if len(verdict.Warnings) > 0 {
		fmt.Fprintln(a.out, "Warning: URL has warnings:")
		for _, w := range verdict.Warnings {
			fmt.Fprintf(a.out, "  - %s\n", w)
		}
		if ok, err := a.proceed("Proceed anyway?"); err != nil || !ok {
			return false, err
		}
	}

	fmt.Fprintln(a.out, "Checking that the feed looks valid...")
	res := a.fetcher.Fetch(ctx, url)
	if !res.OK {
		fmt.Fprintf(a.out, "Warning: Could not fetch feed: %v\n", res.Err)
		return a.proceed("Proceed anyway?")
	}

	if !registry.LooksLikeFeed(res.Body) {
		fmt.Fprintln(a.out, "Warning: Feed does not look like RSS or Atom.")
		return a.proceed("Proceed anyway?")
	}

	info, err := registry.Inspect(res.Body)
	if err != nil {
		log.Debugf("Feed inspection failed: %v", err)
		return true, nil
	}
	fmt.Fprintf(a.out, "Detected %s feed %q with %d items.\n", info.Type, info.Title, info.Items)
	return true, nil
}
