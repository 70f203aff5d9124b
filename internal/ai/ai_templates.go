package ai

import (
	"fmt"
	"strings"

	"github.com/shanehull/newsgrid/internal/types"
)

const (
	maxBullets   = 5
	maxHeadlines = 60
)

const systemInstruction = `
# [INSTRUCTION]

You are an editor for a cloud security community site. You receive the headlines
that were just published to the site's news page, each with its source, category and
tags.

Write a digest for the site maintainers:

- "summary": 3 to 5 bullet points, each one sentence, covering the most significant
  breaches, vulnerabilities and advisories. Name the affected vendor or product.
- "themes": up to five recurring themes across sources.

Only use the headlines provided. Do not speculate about details that are not in them.
If the headlines are mostly unrelated to security, say so in a single bullet.
`

var userPromptTemplate = `
# [HEADLINES]

%s

# [STATS]

Articles: %d
Distinct sources: %d
`

func buildUserPrompt(entries []types.Entry) string {
	sources := map[string]struct{}{}
	var lines []string
	for i, e := range entries {
		sources[e.Source] = struct{}{}
		if i >= maxHeadlines {
			continue
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s (%s; tags: %s)", e.Category, e.Title, e.Source, strings.Join(e.Tags, ", ")))
	}

	return fmt.Sprintf(userPromptTemplate,
		strings.Join(lines, "\n"),
		len(entries),
		len(sources),
	)
}
