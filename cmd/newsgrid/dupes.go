package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/shanehull/newsgrid/internal/links"
)

func dupesCmd() *cli.Command {
	return &cli.Command{
		Name:  "dupes",
		Usage: "Report duplicate links within and across the news and resources pages",
		Description: `Lists every normalized link that appears more than once in the news
page, more than once in the resources page, and in both pages. Read only.`,
		Flags: []cli.Flag{
			newsFileFlag(),
			resourcesFileFlag(),
		},
		Action: func(ctx *cli.Context) error {
			newsPath, resourcesPath := ctx.String("news-file"), ctx.String("resources-file")

			news, err := loadOrWarn(newsPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			resources, err := loadOrWarn(resourcesPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			w := ctx.App.Writer
			printCounts(w, fmt.Sprintf("Duplicate URLs in %s:", newsPath), links.FindDupes(news))
			fmt.Fprintln(w)
			printCounts(w, fmt.Sprintf("Duplicate URLs in %s:", resourcesPath), links.FindDupes(resources))
			fmt.Fprintln(w)
			printList(w, "Duplicate URLs across news and resources:", links.Shared(news, resources))
			return nil
		},
	}
}

func loadOrWarn(path string) ([]string, error) {
	urls, err := links.LoadURLs(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warnf("%s not found; treating it as empty", path)
		return nil, nil
	}
	return urls, err
}

func printCounts(w io.Writer, header string, counts map[string]int) {
	fmt.Fprintln(w, header)
	if len(counts) == 0 {
		fmt.Fprintln(w, "  None")
		return
	}
	urls := make([]string, 0, len(counts))
	for u := range counts {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	for _, u := range urls {
		fmt.Fprintf(w, "  %s (x%d)\n", u, counts[u])
	}
}

func printList(w io.Writer, header string, urls []string) {
	fmt.Fprintln(w, header)
	if len(urls) == 0 {
		fmt.Fprintln(w, "  None")
		return
	}
	for _, u := range urls {
		fmt.Fprintf(w, "  %s\n", u)
	}
}
