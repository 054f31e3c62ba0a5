// Package attribute scores candidate commits against the evidence in a
// failing build log and returns the most likely culprit, or nothing when
// no candidate has any evidence behind it.
package attribute

import (
	"path"
	"regexp"
	"strings"

	"github.com/crimson-sun/sawmill/internal/model"
)

const (
	weightFileMatch = 3
	weightTestMatch = 2
	weightNetwork   = 1

	maxTests = 5
)

// testIDPattern covers snake_case test functions and Go-style test names.
var testIDPattern = regexp.MustCompile(`\btest_[a-zA-Z_][a-zA-Z0-9_]*|\bTest[A-Z][A-Za-z0-9_]*`)

// networkHints trigger the secondary network heuristic when present in the
// label or event text. Deliberately narrow; the bonus is worth one point.
var networkHints = []string{"timeout", "connection", "network", "refused"}

// networkTerms mark a commit as networking-related via its message or files.
var networkTerms = []string{"network", "http", "socket", "connection", "timeout", "retry", "dns"}

// Attribute scores each commit against the events and returns the best
// candidate. label is the active failure label (may be empty); it only
// feeds the network hint. Commits without a sha are skipped. Ties go to
// the earlier commit in input order, which favors recency when callers
// supply commits most-recent-first. A zero best score returns nil so the
// absence of evidence never produces a confident-looking attribution.
func Attribute(events []model.LogEvent, commits []model.Commit, label string) *model.AttributionResult {
	if len(commits) == 0 {
		return nil
	}

	tests := detectTests(events)
	hint := hasNetworkHint(events, label)

	var best *model.Commit
	bestScore := 0
	for i := range commits {
		commit := &commits[i]
		if commit.SHA == "" {
			continue
		}
		score := scoreCommit(commit, events, tests, hint)
		if score > bestScore {
			best = commit
			bestScore = score
		}
	}

	if best == nil {
		return nil
	}
	return &model.AttributionResult{
		SHA:           best.SHA,
		Author:        best.Author,
		Score:         bestScore,
		ChangedFiles:  best.ChangedFiles,
		TestsDetected: tests,
	}
}

func scoreCommit(commit *model.Commit, events []model.LogEvent, tests []string, networkHint bool) int {
	score := 0
	seen := make(map[string]bool, len(commit.ChangedFiles))

	for _, file := range commit.ChangedFiles {
		if file == "" || seen[file] {
			continue
		}
		seen[file] = true

		if fileAppearsInEvents(file, events) {
			score += weightFileMatch
		}
		if fileMatchesAnyTest(file, tests) {
			score += weightTestMatch
		}
	}

	if networkHint && commitIsNetworkRelated(commit) {
		score += weightNetwork
	}
	return score
}

// fileAppearsInEvents reports whether the changed file's path or bare
// filename occurs in any event text. Path matching is case-sensitive.
func fileAppearsInEvents(file string, events []model.LogEvent) bool {
	base := path.Base(file)
	for _, ev := range events {
		if strings.Contains(ev.Text, file) || strings.Contains(ev.Text, base) {
			return true
		}
	}
	return false
}

// fileMatchesAnyTest relates a changed file's stem to a detected test
// identifier: the stem contains the identifier or vice versa, with any
// leading "test_" ignored on both sides.
func fileMatchesAnyTest(file string, tests []string) bool {
	stem := strings.ToLower(strings.TrimSuffix(path.Base(file), path.Ext(file)))
	stem = strings.TrimPrefix(stem, "test_")
	if stem == "" {
		return false
	}
	for _, test := range tests {
		id := strings.TrimPrefix(strings.ToLower(test), "test_")
		if id == "" {
			continue
		}
		if strings.Contains(stem, id) || strings.Contains(id, stem) {
			return true
		}
	}
	return false
}

// detectTests extracts up to maxTests distinct test identifiers in order
// of first appearance.
func detectTests(events []model.LogEvent) []string {
	var out []string
	seen := make(map[string]bool)
	for _, ev := range events {
		for _, m := range testIDPattern.FindAllString(ev.Text, -1) {
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

func hasNetworkHint(events []model.LogEvent, label string) bool {
	if containsAny(strings.ToLower(label), networkHints) {
		return true
	}
	for _, ev := range events {
		if containsAny(strings.ToLower(ev.Text), networkHints) {
			return true
		}
	}
	return false
}

func commitIsNetworkRelated(commit *model.Commit) bool {
	if containsAny(strings.ToLower(commit.Message), networkTerms) {
		return true
	}
	for _, file := range commit.ChangedFiles {
		if containsAny(strings.ToLower(file), networkTerms) {
			return true
		}
	}
	return false
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
