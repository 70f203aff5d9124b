package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// RenderedMessage is a ready-to-send email.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// HTMLEmailRenderer renders run reports as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

// NewHTMLEmailRenderer creates a renderer with the default email template.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Funcs(template.FuncMap{
		"date": formatDate,
		"join": strings.Join,
	}).Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

// Render produces an HTML email with plain text alternative.
func (r *HTMLEmailRenderer) Render(data Report) (*RenderedMessage, error) {
	subject := fmt.Sprintf("News update: %d articles from %d sources", data.Articles(), data.Selection.DistinctSources)
	if data.DryRun {
		subject = "[dry run] " + subject
	}

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

// renderPlainText produces a readable plain text version for email clients that don't support HTML.
func renderPlainText(data Report) string {
	var sb strings.Builder

	sb.WriteString(data.Summary() + "\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	if w := data.DiversityWarning(); w != "" {
		sb.WriteString("Warning: " + w + "\n\n")
	}

	if data.Digest != nil && len(data.Digest.Summary) > 0 {
		sb.WriteString("AI DIGEST\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		sb.WriteString(formatBulletList(data.Digest.Summary))
		if len(data.Digest.Themes) > 0 {
			sb.WriteString("Themes: " + strings.Join(data.Digest.Themes, ", ") + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("ARTICLES\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	for i, e := range data.Selection.Entries {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s (%s)\n", i+1, e.Category, e.Title, e.Source))
		sb.WriteString(fmt.Sprintf("   %s | %s\n", formatDate(e.PublishedAt), e.Link))
	}

	return sb.String()
}
