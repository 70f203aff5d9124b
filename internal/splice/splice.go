/*
Package splice replaces the contents of the news grid container inside the published
page and refreshes its dateModified metadata. Bytes outside the container and the
metadata value are never touched.
*/
package splice

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	Marker       = `<div class="resource-grid">`
	ISOLayout    = "2006-01-02T15:04:05Z"
	metadataName = "dateModified"
)

var (
	ErrStructural        = errors.New("structural error")
	ErrContainerNotFound = fmt.Errorf("%w: could not find resource-grid container", ErrStructural)
	ErrContainerUnclosed = fmt.Errorf("%w: could not find end of resource-grid container", ErrStructural)
)

var dateModifiedPattern = regexp.MustCompile(`"` + metadataName + `"\s*:\s*"[^"]+"`)

// ContentBounds returns the byte range [start, end) between the container marker and
// its matching close tag. Nested divs inside the container are balanced.
func ContentBounds(doc string) (start, end int, err error) {
	idx := strings.Index(doc, Marker)
	if idx < 0 {
		return 0, 0, ErrContainerNotFound
	}
	start = idx + len(Marker)

	z := html.NewTokenizer(strings.NewReader(doc[start:]))
	depth, pos := 1, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0, 0, ErrContainerUnclosed
		}

		// Raw must be read before TagName, which may modify the token in place.
		n := len(z.Raw())
		if tt == html.StartTagToken || tt == html.EndTagToken || tt == html.SelfClosingTagToken {
			name, _ := z.TagName()
			if string(name) == "div" {
				switch tt {
				case html.EndTagToken:
					depth--
				default:
					depth++
				}
				if depth == 0 {
					return start, start + pos, nil
				}
			}
		}
		pos += n
	}
}

// ReplaceGrid swaps the container's content for fragment, wrapped in newlines.
func ReplaceGrid(doc, fragment string) (string, error) {
	start, end, err := ContentBounds(doc)
	if err != nil {
		return doc, err
	}
	return doc[:start] + "\n" + fragment + "\n" + doc[end:], nil
}

// UpdateDateModified rewrites the first "dateModified" value to ts. The boolean is
// false when the document has no such field, in which case doc is returned as is.
func UpdateDateModified(doc string, ts time.Time) (string, bool) {
	loc := dateModifiedPattern.FindStringIndex(doc)
	if loc == nil {
		return doc, false
	}
	value := fmt.Sprintf(`"%s": "%s"`, metadataName, ts.UTC().Format(ISOLayout))
	return doc[:loc[0]] + value + doc[loc[1]:], true
}
