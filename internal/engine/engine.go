// Package engine orchestrates the classify → summarize → attribute
// pipeline and applies the fallback policy between the deterministic rule
// classifier and the statistical model.
package engine

import (
	"strings"

	"github.com/crimson-sun/sawmill/internal/attribute"
	"github.com/crimson-sun/sawmill/internal/engine/bayes"
	"github.com/crimson-sun/sawmill/internal/engine/rules"
	"github.com/crimson-sun/sawmill/internal/model"
	"github.com/crimson-sun/sawmill/internal/summarize"
)

// DefaultThreshold is the rule-confidence threshold below which the
// statistical fallback may override the rule result.
const DefaultThreshold = 0.55

// Analysis is the complete outcome for one event sequence.
type Analysis struct {
	Classification model.ClassificationResult
	Summary        model.Summary
	Attribution    *model.AttributionResult
}

// Engine wires the compiled rule set, the statistical fallback, and the
// confidence threshold. It is stateless apart from the fallback model and
// safe for concurrent use.
type Engine struct {
	taxonomy  []model.FailureCode
	rules     *rules.RuleSet
	fallback  *bayes.Classifier
	threshold float64
}

// New creates an Engine for the given taxonomy. fallback may be a disabled
// classifier; threshold <= 0 selects DefaultThreshold.
func New(taxonomy []model.FailureCode, fallback *bayes.Classifier, threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{
		taxonomy:  taxonomy,
		rules:     rules.Compile(taxonomy),
		fallback:  fallback,
		threshold: threshold,
	}
}

// Taxonomy returns the codes the engine classifies against.
func (e *Engine) Taxonomy() []model.FailureCode {
	return e.taxonomy
}

// Fallback returns the statistical classifier for training and status.
func (e *Engine) Fallback() *bayes.Classifier {
	return e.fallback
}

// Analyze classifies the events, applies the fallback policy, summarizes
// the evidence, and attributes the failure when commits are supplied.
func (e *Engine) Analyze(events []model.LogEvent, commits []model.Commit) Analysis {
	classification := e.classify(events)

	summary := summarize.Summarize(events)
	summary = summarize.WithClassification(summary, classification.Label, classification.Confidence)

	var attribution *model.AttributionResult
	if len(commits) > 0 {
		attribution = attribute.Attribute(events, commits, classification.Label)
	}

	return Analysis{
		Classification: classification,
		Summary:        summary,
		Attribution:    attribution,
	}
}

// classify runs the rule classifier and applies the fallback policy:
//
//   - fallback unavailable → rule result stands.
//   - rule confidence at or above the threshold → rule result stands, the
//     statistical distribution is attached for transparency only.
//   - rule confidence below the threshold and statistical confidence
//     strictly higher → statistical label and confidence win; the rule
//     scores are preserved for audit.
//   - otherwise the rule result stands even at low confidence, so the
//     deterministic evidence is never silently discarded.
func (e *Engine) classify(events []model.LogEvent) model.ClassificationResult {
	result := e.rules.Classify(events)

	pred, ok := e.fallback.Predict(joinText(events))
	if !ok {
		return result
	}

	result.Distribution = pred.Distribution
	if result.Confidence < e.threshold && pred.Confidence > result.Confidence {
		result.Label = pred.Label
		result.Confidence = pred.Confidence
		result.Source = model.SourceStatistical
	}
	return result
}

func joinText(events []model.LogEvent) string {
	var b strings.Builder
	for i, ev := range events {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ev.Text)
	}
	return b.String()
}
