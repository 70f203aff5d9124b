/*
Package render turns selected entries into the card markup owned by the news grid.
*/
package render

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/shanehull/newsgrid/internal/types"
)

const (
	DefaultIndent = "                " // 16 spaces, the grid's nesting inside the page
	DateLayout    = "January 02, 2006"

	summaryLimit = 180
	summaryCut   = 177
	ellipsis     = "..."
)

// escaper matches the escaping already used by the published page, so re-rendering an
// unchanged entry produces the same bytes.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

func Escape(s string) string {
	return escaper.Replace(s)
}

// StripMarkup drops every tag from s, decodes entities and collapses whitespace.
func StripMarkup(s string) string {
	var parts []string
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		case html.TextToken:
			parts = append(parts, string(z.Text()))
		default:
			// tags separate words the same way whitespace does
			parts = append(parts, " ")
		}
	}
}

// Summary is the plain text shown on a card, at most summaryLimit characters.
func Summary(raw string) string {
	s := StripMarkup(raw)
	if utf8.RuneCountInString(s) <= summaryLimit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:summaryCut]), unicode.IsSpace) + ellipsis
}

// Renderer writes cards. Now supplies the date shown for entries without one.
type Renderer struct {
	Indent string
	Now    func() time.Time
}

func New() *Renderer {
	return &Renderer{Indent: DefaultIndent, Now: time.Now}
}

// Card renders one entry. Summary, Category and Tags must already be resolved.
func (r *Renderer) Card(e types.Entry) string {
	date := r.Now()
	if e.PublishedAt != nil {
		date = *e.PublishedAt
	}

	in := r.Indent
	var b strings.Builder
	b.WriteString(in + `<a href="` + Escape(e.Link) + `" class="card-link" target="_blank" rel="noopener noreferrer">` + "\n")
	b.WriteString(in + `    <div class="resource-card" data-category="` + string(e.Category) + `">` + "\n")
	b.WriteString(in + `        <h3>` + Escape(e.Title) + `</h3>` + "\n")
	b.WriteString(in + `        <p class="article-date">` + date.UTC().Format(DateLayout) + `</p>` + "\n")
	b.WriteString(in + `        <p>` + Escape(e.Summary) + ` <span class="source">(` + Escape(e.Source) + `)</span></p>` + "\n")
	b.WriteString(in + `        <div class="resource-tags">` + "\n")
	for _, tag := range e.Tags {
		b.WriteString(in + `            <span class="tag">` + Escape(tag) + `</span>` + "\n")
	}
	b.WriteString(in + `        </div>` + "\n")
	b.WriteString(in + `    </div>` + "\n")
	b.WriteString(in + `</a>`)
	return b.String()
}

// Fragment joins the cards of entries in order, one per line group.
func (r *Renderer) Fragment(entries []types.Entry) string {
	cards := make([]string, len(entries))
	for i, e := range entries {
		cards[i] = r.Card(e)
	}
	return strings.Join(cards, "\n")
}
