package registry

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedInfo summarizes a candidate feed for the add-source confirmation.
type FeedInfo struct {
	Type  string
	Title string
	Items int
}

// LooksLikeFeed is the cheap check used before anything is written to the registry.
func LooksLikeFeed(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "<rss") ||
		strings.Contains(lower, "<feed") ||
		strings.Contains(lower, "<rdf:rdf")
}

// Inspect parses text with a general purpose feed parser.
func Inspect(text string) (*FeedInfo, error) {
	switch gofeed.DetectFeedType(strings.NewReader(text)) {
	case gofeed.FeedTypeAtom, gofeed.FeedTypeRSS:
	default:
		return nil, fmt.Errorf("content is not an RSS or Atom feed")
	}

	parsed, err := gofeed.NewParser().ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return &FeedInfo{
		Type:  parsed.FeedType,
		Title: strings.TrimSpace(parsed.Title),
		Items: len(parsed.Items),
	}, nil
}
