/*
Package feed turns raw syndication documents (Atom, RSS 2.0 and RSS 1.0/RDF) into
RawEntry records.
*/
package feed

import (
	"strings"

	"github.com/shanehull/newsgrid/internal/types"
)

type Dialect int

const (
	// Malformed means the text is not well-formed XML.
	Malformed Dialect = iota
	// Unrecognized is well-formed XML with an unknown root; items are still scanned for.
	Unrecognized
	Atom
	RSS
	RDF
)

func (d Dialect) String() string {
	switch d {
	case Atom:
		return "atom"
	case RSS:
		return "rss"
	case RDF:
		return "rdf"
	case Unrecognized:
		return "unrecognized"
	default:
		return "malformed"
	}
}

type Parsed struct {
	Dialect Dialect
	Entries []types.RawEntry
}

// Detect classifies a root element by its local name, ignoring any namespace.
func Detect(rootLocal string) Dialect {
	name := strings.ToLower(rootLocal)
	switch {
	case strings.HasSuffix(name, "feed"):
		return Atom
	case name == "rss":
		return RSS
	case name == "rdf":
		return RDF
	default:
		return Unrecognized
	}
}

// Parse never fails: malformed input yields a Parsed with Dialect Malformed and no entries.
func Parse(text, source string) Parsed {
	root, err := buildTree(text)
	if err != nil {
		return Parsed{Dialect: Malformed}
	}

	dialect := Detect(root.name.Local)

	var entries []types.RawEntry
	if dialect == Atom {
		entries = parseAtom(root, source)
	} else {
		entries = parseItems(root, source)
	}

	return Parsed{Dialect: dialect, Entries: entries}
}

func parseAtom(root *node, source string) []types.RawEntry {
	var entries []types.RawEntry

	for _, entry := range root.childrenNamed("entry") {
		entries = append(entries, types.RawEntry{
			Title:     strings.TrimSpace(entry.childText("title")),
			Link:      strings.TrimSpace(alternateLink(entry)),
			Published: strings.TrimSpace(entry.firstText("published", "updated")),
			Summary:   entry.firstText("summary", "content"),
			Source:    source,
		})
	}
	return entries
}

// alternateLink returns the href of the first link whose rel is (or defaults to) "alternate".
func alternateLink(entry *node) string {
	for _, link := range entry.childrenNamed("link") {
		rel, ok := link.attr("rel")
		if !ok {
			rel = "alternate"
		}
		if rel == "alternate" {
			href, _ := link.attr("href")
			return href
		}
	}
	return ""
}

// parseItems finds item elements at any depth so RSS 2.0, RDF and odd variants all work.
func parseItems(root *node, source string) []types.RawEntry {
	var entries []types.RawEntry

	for _, item := range root.descendants("item") {
		entries = append(entries, types.RawEntry{
			Title:     strings.TrimSpace(item.childText("title")),
			Link:      strings.TrimSpace(item.childText("link")),
			Published: strings.TrimSpace(item.firstText("pubDate", "date")),
			Summary:   item.firstText("description", "summary"),
			Source:    source,
		})
	}
	return entries
}
