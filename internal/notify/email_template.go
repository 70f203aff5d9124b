package notify

import "time"

func formatDate(t *time.Time) string {
	if t == nil {
		return "undated"
	}
	return t.UTC().Format("02 Jan 2006")
}

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Summary}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #1e3a5f 0%, #37393b 100%);
      color: #ffffff;
    }

    .headline {
      font-size: 20px;
      font-weight: 700;
      margin-bottom: 4px;
    }

    .badge {
      display: inline-block;
      margin-top: 8px;
      padding: 4px 10px;
      font-size: 11px;
      font-weight: 600;
      border-radius: 4px;
      background: #f97316;
      color: #ffffff;
      text-transform: uppercase;
      letter-spacing: 0.05em;
    }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .section-title {
      font-size: 11px;
      font-weight: 700;
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.1em;
      margin-bottom: 12px;
    }

    .summary-list,
    .article-list {
      margin: 0;
      padding-left: 20px;
      font-size: 14px;
    }

    .summary-list li,
    .article-list li {
      margin-bottom: 8px;
      padding-left: 4px;
    }

    .category {
      display: inline-block;
      padding: 3px 6px;
      font-size: 10px;
      font-weight: 600;
      background: #fef3c7;
      color: #92400e;
      border-radius: 3px;
      text-transform: uppercase;
      letter-spacing: 0.03em;
      margin-right: 2px;
    }

    .meta {
      font-size: 12px;
      color: #6b7280;
    }

    .warning-box {
      background: #fff7ed;
      border-left: 3px solid #f97316;
      padding: 12px 16px;
      font-size: 13px;
      color: #374151;
      border-radius: 0 4px 4px 0;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }

    a {
      color: #0b3d91;
      text-decoration: none;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="headline">{{.Summary}}</div>
      {{if .DryRun}}
      <span class="badge">Dry run</span>
      {{end}}
    </div>

    {{with .DiversityWarning}}
    <div class="section">
      <div class="warning-box">{{.}}</div>
    </div>
    {{end}}

    {{if .Digest}}
      {{if .Digest.Summary}}
      <div class="section">
        <div class="section-title">AI Digest</div>
        <ul class="summary-list">
          {{range .Digest.Summary}}
          <li>{{.}}</li>
          {{end}}
        </ul>
        {{if .Digest.Themes}}
        <div class="meta">Themes: {{join .Digest.Themes ", "}}</div>
        {{end}}
      </div>
      {{end}}
    {{end}}

    <div class="section">
      <div class="section-title">Articles</div>
      <ul class="article-list">
        {{range .Selection.Entries}}
        <li>
          <span class="category">{{.Category}}</span>
          <a href="{{.Link}}" target="_blank" rel="noopener">{{.Title}}</a>
          <div class="meta">{{.Source}} · {{date .PublishedAt}}</div>
        </li>
        {{end}}
      </ul>
    </div>

    <div class="footer">
      Generated by newsgrid on {{.Generated.Format "02 Jan 2006 15:04 MST"}}
    </div>
  </div>
</body>
</html>`
