/*
Package types holds the records passed between the stages of a news update run.
*/
package types

import (
	"time"
)

// FeedSource is one entry of the feed registry.
type FeedSource struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// RawEntry is what a feed parser produces. Published is the feed's own text.
type RawEntry struct {
	Title     string
	Link      string
	Published string
	Summary   string
	Source    string
}

type Category string

const (
	CategoryBreach        Category = "breach"
	CategoryVulnerability Category = "vulnerability"
	CategoryReport        Category = "report"
)

// Entry is a RawEntry that survived filtering and deduplication.
// Link holds the normalized URL. PublishedAt is nil when the date did not parse.
type Entry struct {
	RawEntry
	PublishedAt *time.Time
	Category    Category
	Tags        []string
}

// EffectiveTime is the sort key: the resolved date or the zero Unix epoch.
func (e Entry) EffectiveTime() time.Time {
	if e.PublishedAt == nil {
		return time.Unix(0, 0).UTC()
	}
	return *e.PublishedAt
}

type Selection struct {
	Entries         []Entry
	DistinctSources int
	MinSources      int
}

// LowDiversity reports that fewer distinct sources were selected than requested.
func (s Selection) LowDiversity() bool {
	return s.DistinctSources < s.MinSources
}
