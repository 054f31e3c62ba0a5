// Package rules implements the deterministic rule classifier: taxonomy
// indicators become weighted literal matchers, events are scanned, and the
// best-scoring failure code wins with a normalized confidence.
package rules

import (
	"strings"

	"github.com/crimson-sun/sawmill/internal/model"
)

const (
	// weightIndicator is the base weight of a taxonomy indicator match.
	weightIndicator = 2
	// weightGeneric is the weight of a generic "something failed" match.
	weightGeneric = 1
)

// genericIndicators match when nothing taxonomy-specific does. They carry
// no failure code and never enter the scores map; their hits are reported
// separately so callers can still tell "failed somehow" from silence.
var genericIndicators = []string{"error", "exception", "failed"}

type rule struct {
	code      string // empty for generic rules
	indicator string // pre-lowered literal
	weight    int
}

// RuleSet is a taxonomy compiled into matchers. Compile once per taxonomy;
// Classify is pure and safe for concurrent use.
type RuleSet struct {
	rules []rule
	order []string // code ids in declaration order, for tie-breaks
}

// Compile converts taxonomy indicators into case-insensitive literal rules,
// preserving declaration order, and registers the generic fallback rules.
func Compile(taxonomy []model.FailureCode) *RuleSet {
	rs := &RuleSet{}
	seen := make(map[string]bool, len(taxonomy))

	for _, code := range taxonomy {
		if !seen[code.Code] {
			seen[code.Code] = true
			rs.order = append(rs.order, code.Code)
		}
		for _, ind := range code.Indicators {
			rs.rules = append(rs.rules, rule{
				code:      code.Code,
				indicator: strings.ToLower(ind),
				weight:    weightIndicator,
			})
		}
	}
	for _, ind := range genericIndicators {
		rs.rules = append(rs.rules, rule{indicator: ind, weight: weightGeneric})
	}
	return rs
}

// Classify scans every event against every rule and returns the
// accumulated scores, the argmax label, and its share of total evidence.
//
// Each (event, rule) pair contributes at most once; one event may feed
// multiple codes. Ties go to the code declared first in the taxonomy.
// With no taxonomy evidence the result is UNCLASSIFIED at confidence 0,
// which is a normal outcome, not an error.
func (rs *RuleSet) Classify(events []model.LogEvent) model.ClassificationResult {
	scores := make(map[string]int)
	generic := 0

	for _, ev := range events {
		if ev.Text == "" {
			continue
		}
		text := strings.ToLower(ev.Text)
		for _, r := range rs.rules {
			if !strings.Contains(text, r.indicator) {
				continue
			}
			if r.code == "" {
				generic += r.weight
			} else {
				scores[r.code] += r.weight
			}
		}
	}

	if len(scores) == 0 {
		return model.ClassificationResult{
			Label:       model.Unclassified,
			Confidence:  0,
			Scores:      scores,
			Source:      model.SourceRule,
			GenericHits: generic,
		}
	}

	best := ""
	bestScore := 0
	total := 0
	for _, code := range rs.order {
		score, ok := scores[code]
		if !ok {
			continue
		}
		total += score
		if score > bestScore {
			best = code
			bestScore = score
		}
	}

	return model.ClassificationResult{
		Label:       best,
		Confidence:  float64(bestScore) / float64(total),
		Scores:      scores,
		Source:      model.SourceRule,
		GenericHits: generic,
	}
}

// Classify compiles the taxonomy and classifies in one call. Callers that
// hold the taxonomy for the process lifetime should Compile once instead.
func Classify(events []model.LogEvent, taxonomy []model.FailureCode) model.ClassificationResult {
	return Compile(taxonomy).Classify(events)
}
