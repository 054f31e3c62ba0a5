// Package normalize turns raw multiline build-log text into an ordered
// sequence of structured events for the classification pipeline.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/sawmill/internal/model"
)

var (
	ansiEscape = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\[Pipeline\]`),
		regexp.MustCompile(`^\[\d+m`),
		regexp.MustCompile(`^Download.*\.\.\.$`),
		regexp.MustCompile(`^-{5,}$`),
	}

	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)
	// \b keeps camel-case identifiers like AssertionError from being
	// mistaken for a standalone ERROR level marker.
	levelPattern = regexp.MustCompile(`(?i)\[?\b(INFO|WARNING|WARN|ERROR|DEBUG|TRACE|FATAL)\b\]?`)
	leadingJunk      = regexp.MustCompile(`^[\s\[\]:-]+`)
)

// Normalizer converts raw log text into structured events.
// MaxEvents caps output to the most recent N events (0 means no cap); the
// cap bounds downstream scan latency on pathologically large logs.
type Normalizer struct {
	MaxEvents int
}

// New creates a Normalizer with the given event cap.
func New(maxEvents int) *Normalizer {
	return &Normalizer{MaxEvents: maxEvents}
}

// Normalize splits raw text into lines, drops noise, strips ANSI escapes,
// and extracts timestamp and level from each surviving line. Event Index
// is the line's position in the original log.
func (n *Normalizer) Normalize(raw string) []model.LogEvent {
	lines := strings.Split(raw, "\n")
	events := make([]model.LogEvent, 0, len(lines))

	for index, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isNoise(trimmed) {
			continue
		}

		clean := strings.TrimSpace(ansiEscape.ReplaceAllString(line, ""))
		if clean == "" {
			continue
		}
		clean = norm.NFC.String(clean)

		timestamp := timestampPattern.FindString(clean)
		level := extractLevel(clean)

		events = append(events, model.LogEvent{
			Index:     index,
			Timestamp: timestamp,
			Level:     level,
			Text:      cleanText(clean, timestamp, level),
		})
	}

	if n.MaxEvents > 0 && len(events) > n.MaxEvents {
		events = events[len(events)-n.MaxEvents:]
	}
	return events
}

func isNoise(line string) bool {
	for _, p := range noisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func extractLevel(line string) string {
	m := levelPattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// cleanText removes the extracted timestamp and the first level marker so
// downstream matchers see only message content.
func cleanText(line, timestamp, level string) string {
	text := line
	if timestamp != "" {
		text = strings.Replace(text, timestamp, "", 1)
	}
	if level != "" {
		for _, marker := range []string{"[" + level + "]", level, "[" + strings.ToLower(level) + "]", strings.ToLower(level)} {
			if idx := strings.Index(text, marker); idx >= 0 {
				text = text[:idx] + text[idx+len(marker):]
				break
			}
		}
	}
	return strings.TrimSpace(leadingJunk.ReplaceAllString(strings.TrimSpace(text), ""))
}
