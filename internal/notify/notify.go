/*
Package notify reports the outcome of an update run on the console and, when SMTP is
configured, by email.
*/
package notify

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shanehull/newsgrid/internal/ai"
	"github.com/shanehull/newsgrid/internal/types"
)

// Report is everything the console line and the email are built from.
type Report struct {
	File      string
	Selection types.Selection
	Digest    *ai.Digest
	DryRun    bool
	Generated time.Time
}

func (r Report) Articles() int {
	return len(r.Selection.Entries)
}

// Summary is the single line printed after a run.
func (r Report) Summary() string {
	if r.DryRun {
		return fmt.Sprintf("Dry run: %s would be updated with %d articles from %d sources.", r.File, r.Articles(), r.Selection.DistinctSources)
	}
	return fmt.Sprintf("Updated %s with %d articles from %d sources.", r.File, r.Articles(), r.Selection.DistinctSources)
}

// DiversityWarning is empty unless fewer sources than requested made the selection.
func (r Report) DiversityWarning() string {
	if !r.Selection.LowDiversity() {
		return ""
	}
	return fmt.Sprintf("Only %d sources available; expected at least %d.", r.Selection.DistinctSources, r.Selection.MinSources)
}

func PrintSummary(w io.Writer, r Report) {
	fmt.Fprintln(w, r.Summary())
}

func formatBulletList(points []string) string {
	if len(points) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("\t- %s\n", p))
	}
	return sb.String()
}
