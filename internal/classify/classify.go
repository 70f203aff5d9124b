/*
Package classify decides topical relevance and assigns a category and tags to entries
using fixed keyword taxonomies.

Keywords of three characters or fewer only match as whole words, so "ai" matches
"AI" but not "email" or "said". Longer keywords match anywhere, so "ransomware"
matches "Ransomware-as-a-Service".
*/
package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shanehull/newsgrid/internal/types"
)

const shortKeywordLen = 3

// Word boundaries are Unicode-aware: \b in RE2 only knows ASCII word characters, so
// "éai" would otherwise match "ai".
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

type keyword struct {
	word string
	re   *regexp.Regexp
}

func compile(word string) keyword {
	word = strings.ToLower(word)
	k := keyword{word: word}
	if utf8.RuneCountInString(word) <= shortKeywordLen {
		k.re = regexp.MustCompile(wordStart + regexp.QuoteMeta(word) + wordEnd)
	}
	return k
}

// matches expects already lower-cased text.
func (k keyword) matches(lower string) bool {
	if k.re != nil {
		return k.re.MatchString(lower)
	}
	return strings.Contains(lower, k.word)
}

func compileAll(words []string) []keyword {
	out := make([]keyword, len(words))
	for i, w := range words {
		out[i] = compile(w)
	}
	return out
}

func anyMatch(keywords []keyword, lower string) bool {
	for _, k := range keywords {
		if k.matches(lower) {
			return true
		}
	}
	return false
}

// Match applies the length-based matching rule to a single keyword.
func Match(word, text string) bool {
	return compile(word).matches(strings.ToLower(text))
}

type compiledCategory struct {
	category types.Category
	keywords []keyword
}

type compiledTag struct {
	tag      string
	keywords []keyword
}

// Classifier holds compiled taxonomies. It is safe for concurrent use.
type Classifier struct {
	relevance  []keyword
	categories []compiledCategory
	tags       []compiledTag
}

func New() *Classifier {
	c := &Classifier{relevance: compileAll(relevanceKeywords)}
	for _, r := range categoryRules {
		c.categories = append(c.categories, compiledCategory{r.category, compileAll(r.keywords)})
	}
	for _, r := range tagRules {
		c.tags = append(c.tags, compiledTag{r.tag, compileAll(r.keywords)})
	}
	return c
}

func (c *Classifier) Relevant(text string) bool {
	return anyMatch(c.relevance, strings.ToLower(text))
}

// Category returns the first category in priority order with a keyword match,
// falling back to report.
func (c *Classifier) Category(text string) types.Category {
	lower := strings.ToLower(text)
	for _, cat := range c.categories {
		if anyMatch(cat.keywords, lower) {
			return cat.category
		}
	}
	return types.CategoryReport
}

// Tags returns up to MaxTags matching tags in taxonomy order, or DefaultTag alone.
func (c *Classifier) Tags(text string) []string {
	lower := strings.ToLower(text)

	var tags []string
	for _, t := range c.tags {
		if len(tags) == MaxTags {
			break
		}
		if anyMatch(t.keywords, lower) {
			tags = append(tags, t.tag)
		}
	}

	if len(tags) == 0 {
		return []string{DefaultTag}
	}
	return tags
}
