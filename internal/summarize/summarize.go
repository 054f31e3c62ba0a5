// Package summarize extracts headline evidence (exception names, test
// identifiers, the first assertion) from normalized events and renders a
// one-line human summary.
package summarize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/crimson-sun/sawmill/internal/model"
)

const (
	// recentWindow bounds extraction to the tail of the log, where the
	// actual failure almost always is.
	recentWindow = 300

	maxExceptions   = 3
	maxTests        = 5
	maxAssertionLen = 180
)

var (
	exceptionPattern = regexp.MustCompile(`\b([A-Za-z_]\w*(?:Exception|Error))\b`)
	testPattern      = regexp.MustCompile(`\btest_[a-zA-Z_][a-zA-Z0-9_]*`)
	assertionPattern = regexp.MustCompile(`(?i)(assert.*|AssertionError.*)`)
)

// Summarize extracts evidence from the most recent events. Label and
// Confidence are placeholders until WithClassification fills them in.
func Summarize(events []model.LogEvent) model.Summary {
	if len(events) > recentWindow {
		events = events[len(events)-recentWindow:]
	}

	exceptions := extractExceptions(events)
	tests := extractTests(events)
	assertion := extractAssertion(events)

	return model.Summary{
		Label:      model.Unclassified,
		Exceptions: exceptions,
		Tests:      tests,
		Assertion:  assertion,
		Summary:    renderText(exceptions, tests, assertion),
	}
}

// WithClassification stamps the final label and confidence onto a summary
// and prefixes them to the rendered line.
func WithClassification(s model.Summary, label string, confidence float64) model.Summary {
	s.Label = label
	s.Confidence = confidence
	s.Summary = fmt.Sprintf("Label: %s (%.2f) | %s", label, confidence, s.Summary)
	return s
}

func extractExceptions(events []model.LogEvent) []string {
	var out []string
	seen := make(map[string]bool)
	for _, ev := range events {
		for _, m := range exceptionPattern.FindAllStringSubmatch(ev.Text, -1) {
			name := m[1]
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
			if len(out) >= maxExceptions {
				return out
			}
		}
	}
	return out
}

func extractTests(events []model.LogEvent) []string {
	var out []string
	seen := make(map[string]bool)
	for _, ev := range events {
		for _, m := range testPattern.FindAllString(ev.Text, -1) {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
			if len(out) >= maxTests {
				return out
			}
		}
	}
	return out
}

func extractAssertion(events []model.LogEvent) string {
	for _, ev := range events {
		m := assertionPattern.FindStringSubmatch(ev.Text)
		if m == nil {
			continue
		}
		assertion := strings.TrimSpace(m[1])
		if len(assertion) > maxAssertionLen {
			assertion = assertion[:maxAssertionLen-3] + "..."
		}
		return assertion
	}
	return ""
}

func renderText(exceptions, tests []string, assertion string) string {
	var parts []string

	switch {
	case len(exceptions) == 1:
		parts = append(parts, "Exception: "+exceptions[0])
	case len(exceptions) > 1:
		parts = append(parts, "Exceptions: "+strings.Join(exceptions, ", "))
	}

	switch {
	case len(tests) == 1:
		parts = append(parts, "Test: "+tests[0])
	case len(tests) > 1:
		shown := tests
		if len(shown) > 3 {
			shown = shown[:3]
		}
		parts = append(parts, "Tests: "+strings.Join(shown, ", "))
	}

	if assertion != "" {
		short := assertion
		if len(short) > 100 {
			short = short[:100] + "..."
		}
		parts = append(parts, "Assertion: "+short)
	}

	if len(parts) == 0 {
		return "No specific failure details extracted"
	}
	return strings.Join(parts, " | ")
}
