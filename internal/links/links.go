/*
Package links extracts and normalizes the article links already published on the
site so a run never re-adds them, and reports duplicates across documents.
*/
package links

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

var hrefPattern = regexp.MustCompile(`(?i)href="(https?://[^"]+)"`)

// Normalize maps a URL to its identity key: whitespace trimmed, everything from the
// first '#' or '?' dropped and trailing slashes removed. Query strings are
// deliberately lost. Normalize(Normalize(u)) == Normalize(u).
func Normalize(url string) string {
	for {
		next := strings.TrimSpace(url)
		if i := strings.IndexAny(next, "#?"); i >= 0 {
			next = next[:i]
		}
		next = strings.TrimRight(next, "/")
		if next == url {
			return next
		}
		url = next
	}
}

// ExtractLinks returns every absolute http(s) href in text, in document order.
func ExtractLinks(text string) []string {
	matches := hrefPattern.FindAllStringSubmatch(text, -1)
	return lo.Map(matches, func(m []string, _ int) string { return m[1] })
}

// LoadURLs returns the normalized links of the document at path. A missing document
// yields an error matching os.ErrNotExist.
func LoadURLs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lo.Map(ExtractLinks(string(data)), func(u string, _ int) string { return Normalize(u) }), nil
}

// Set is a read-only snapshot of normalized links.
type Set struct {
	urls map[string]struct{}
}

func NewSet(urls ...string) *Set {
	s := &Set{urls: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		s.urls[Normalize(u)] = struct{}{}
	}
	return s
}

// LoadSet builds a Set from the given documents. Documents that do not exist are
// skipped and returned in missing; any other read failure is an error.
func LoadSet(paths ...string) (set *Set, missing []string, err error) {
	var all []string
	for _, path := range paths {
		if path == "" {
			continue
		}
		urls, err := LoadURLs(path)
		if errors.Is(err, os.ErrNotExist) {
			missing = append(missing, path)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		all = append(all, urls...)
	}
	return NewSet(all...), missing, nil
}

// Contains normalizes url before the lookup.
func (s *Set) Contains(url string) bool {
	_, ok := s.urls[Normalize(url)]
	return ok
}

func (s *Set) Len() int {
	return len(s.urls)
}

// FindDupes returns the values occurring more than once with their counts.
func FindDupes(values []string) map[string]int {
	return lo.PickBy(lo.CountValues(values), func(_ string, count int) bool {
		return count > 1
	})
}

// Shared returns the sorted distinct values present in both a and b.
func Shared(a, b []string) []string {
	shared := lo.Uniq(lo.Intersect(a, b))
	sort.Strings(shared)
	return shared
}
