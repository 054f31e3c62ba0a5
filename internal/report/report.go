// Package report renders build analysis records as Markdown.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/crimson-sun/sawmill/internal/model"
)

// evidenceTail is how many trailing events the report shows verbatim.
const evidenceTail = 10

// Markdown renders a full failure report for one build record.
func Markdown(rec model.BuildRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Build failure report: %s\n\n", rec.BuildID)
	fmt.Fprintf(&b, "- **Label**: `%s`\n", rec.Label)
	fmt.Fprintf(&b, "- **Confidence**: %.2f\n", rec.Confidence)
	fmt.Fprintf(&b, "- **Ingested**: %s\n", time.UnixMilli(rec.IngestedAt).UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Events**: %d\n\n", len(rec.Events))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "%s\n\n", rec.Summary.Summary)

	if len(rec.Scores) > 0 {
		b.WriteString("## Scores\n\n")
		b.WriteString("| Code | Score |\n|---|---|\n")
		for _, code := range sortedByScore(rec.Scores) {
			fmt.Fprintf(&b, "| `%s` | %d |\n", code, rec.Scores[code])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Attribution\n\n")
	if rec.Attribution == nil {
		b.WriteString("No commit could be attributed to this failure.\n\n")
	} else {
		a := rec.Attribution
		fmt.Fprintf(&b, "- **Commit**: `%s`\n", a.SHA)
		if a.Author != "" {
			fmt.Fprintf(&b, "- **Author**: %s\n", a.Author)
		}
		fmt.Fprintf(&b, "- **Score**: %d\n", a.Score)
		if len(a.ChangedFiles) > 0 {
			fmt.Fprintf(&b, "- **Changed files**: %s\n", codeList(a.ChangedFiles))
		}
		if len(a.TestsDetected) > 0 {
			fmt.Fprintf(&b, "- **Tests detected**: %s\n", codeList(a.TestsDetected))
		}
		b.WriteString("\n")
	}

	if len(rec.Events) > 0 {
		b.WriteString("## Last events\n\n```\n")
		events := rec.Events
		if len(events) > evidenceTail {
			events = events[len(events)-evidenceTail:]
		}
		for _, ev := range events {
			fmt.Fprintf(&b, "%4d  %s\n", ev.Index, ev.Text)
		}
		b.WriteString("```\n")
	}

	return b.String()
}

// sortedByScore orders codes by descending score, then lexically so the
// report is stable across runs.
func sortedByScore(scores map[string]int) []string {
	codes := make([]string, 0, len(scores))
	for code := range scores {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if scores[codes[i]] != scores[codes[j]] {
			return scores[codes[i]] > scores[codes[j]]
		}
		return codes[i] < codes[j]
	})
	return codes
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "`" + it + "`"
	}
	return strings.Join(quoted, ", ")
}
