/*
Package selector orders candidate entries newest first and keeps the most recent ones.
*/
package selector

import (
	"errors"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/shanehull/newsgrid/internal/types"
)

var ErrNoCandidates = errors.New("no relevant news items found in any feed")

// Tried in order after the RFC 2822 parser. Layouts without a zone resolve to UTC.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// RFC 2822 obsolete zone names. net/mail reads unknown abbreviations as offset zero
// and rejects the military "Z".
var obsoleteZones = map[string]string{
	"UT": "+0000", "UTC": "+0000", "GMT": "+0000", "Z": "+0000",
	"AST": "-0400", "ADT": "-0300",
	"EST": "-0500", "EDT": "-0400",
	"CST": "-0600", "CDT": "-0500",
	"MST": "-0700", "MDT": "-0600",
	"PST": "-0800", "PDT": "-0700",
}

// numericZone rewrites a trailing obsolete zone name as its numeric offset.
func numericZone(value string) string {
	i := strings.LastIndexByte(value, ' ')
	if i < 0 {
		return value
	}
	if offset, ok := obsoleteZones[strings.ToUpper(value[i+1:])]; ok {
		return value[:i+1] + offset
	}
	return value
}

// ParseDate resolves a feed's published text. It returns nil when no format matches.
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if t, err := mail.ParseDate(numericZone(value)); err == nil {
		return &t
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// Resolve fills PublishedAt from the raw published text where it is not already set.
func Resolve(entries []types.Entry) {
	for i := range entries {
		if entries[i].PublishedAt == nil {
			entries[i].PublishedAt = ParseDate(entries[i].Published)
		}
	}
}

// Select sorts candidates by date, newest first, and keeps at most maxArticles.
// Entries without a resolvable date sort last. Equal dates keep collection order.
// The candidates slice is reordered in place.
func Select(candidates []types.Entry, maxArticles, minSources int) (types.Selection, error) {
	if len(candidates) == 0 {
		return types.Selection{}, ErrNoCandidates
	}

	Resolve(candidates)
	sort.SliceStable(candidates, func(i, j int) bool {
		return newer(candidates[i], candidates[j])
	})

	selected := candidates
	if maxArticles >= 0 && len(selected) > maxArticles {
		selected = selected[:maxArticles]
	}

	sources := lo.Uniq(lo.Map(selected, func(e types.Entry, _ int) string { return e.Source }))

	return types.Selection{
		Entries:         selected,
		DistinctSources: len(sources),
		MinSources:      minSources,
	}, nil
}

// newer compares effective times, except that an unresolved date never beats a
// resolved one, even one before the epoch.
func newer(a, b types.Entry) bool {
	switch {
	case a.PublishedAt == nil:
		return false
	case b.PublishedAt == nil:
		return true
	}
	return a.EffectiveTime().After(b.EffectiveTime())
}

// Newest is the timestamp written to the document metadata: the first selected
// entry's resolved date, or now when it has none.
func Newest(sel types.Selection, now time.Time) time.Time {
	if len(sel.Entries) > 0 && sel.Entries[0].PublishedAt != nil {
		return sel.Entries[0].PublishedAt.UTC()
	}
	return now.UTC()
}
