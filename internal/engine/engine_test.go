package engine

import (
	"strings"
	"testing"

	"github.com/crimson-sun/sawmill/internal/engine/bayes"
	"github.com/crimson-sun/sawmill/internal/model"
)

func testTaxonomy() []model.FailureCode {
	return []model.FailureCode{
		{Code: "Test:Failure:Assertion", Indicators: []string{"AssertionError"}},
		{Code: "Infra:Network:Timeout", Indicators: []string{"timed out", "connection refused"}},
	}
}

func newTestEngine(enableFallback bool) *Engine {
	return New(testTaxonomy(), bayes.New(enableFallback), 0)
}

// trainFallback fits the engine's statistical model on a small corpus so
// fallback-policy paths can be exercised deterministically.
func trainFallback(t *testing.T, e *Engine) {
	t.Helper()
	err := e.Fallback().Train([]model.TrainingSample{
		{Text: "flaky marker zorple glib", Label: "Flaky:Environment"},
		{Text: "zorple glib appeared again", Label: "Flaky:Environment"},
		{Text: "AssertionError expected got", Label: "Test:Failure:Assertion"},
	})
	if err != nil {
		t.Fatalf("Train() error: %v", err)
	}
}

func TestAnalyze_RuleOnly(t *testing.T) {
	e := newTestEngine(false)
	events := []model.LogEvent{
		{Index: 0, Text: "AssertionError: expected 2 got 3"},
		{Index: 1, Text: "Test failed: test_authentication"},
	}

	a := e.Analyze(events, nil)

	if a.Classification.Label != "Test:Failure:Assertion" {
		t.Errorf("Label = %q", a.Classification.Label)
	}
	if a.Classification.Confidence != 1.0 {
		t.Errorf("Confidence = %v", a.Classification.Confidence)
	}
	if a.Classification.Source != model.SourceRule {
		t.Errorf("Source = %q", a.Classification.Source)
	}
	if a.Classification.Distribution != nil {
		t.Error("disabled fallback must not attach a distribution")
	}
	if !strings.Contains(a.Summary.Summary, "Label: Test:Failure:Assertion") {
		t.Errorf("Summary = %q", a.Summary.Summary)
	}
	if a.Attribution != nil {
		t.Error("no commits supplied, attribution must be nil")
	}
}

func TestAnalyze_EmptyEvents(t *testing.T) {
	e := newTestEngine(false)

	a := e.Analyze(nil, nil)

	if a.Classification.Label != model.Unclassified {
		t.Errorf("Label = %q", a.Classification.Label)
	}
	if a.Classification.Confidence != 0 {
		t.Errorf("Confidence = %v", a.Classification.Confidence)
	}
	if len(a.Classification.Scores) != 0 {
		t.Errorf("Scores = %v", a.Classification.Scores)
	}
}

func TestAnalyze_UntrainedFallbackIgnored(t *testing.T) {
	e := newTestEngine(true)
	events := []model.LogEvent{{Index: 0, Text: "nothing recognizable here"}}

	a := e.Analyze(events, nil)

	if a.Classification.Source != model.SourceRule {
		t.Errorf("Source = %q, want rule", a.Classification.Source)
	}
	if a.Classification.Label != model.Unclassified {
		t.Errorf("Label = %q", a.Classification.Label)
	}
}

func TestAnalyze_ConfidentRuleKeepsLabelButAttachesDistribution(t *testing.T) {
	e := newTestEngine(true)
	trainFallback(t, e)

	events := []model.LogEvent{
		{Index: 0, Text: "AssertionError: expected 2 got 3"},
	}

	a := e.Analyze(events, nil)

	// Rule confidence is 1.0, far above the threshold: the rule label must
	// stand regardless of what the statistical model thinks.
	if a.Classification.Label != "Test:Failure:Assertion" {
		t.Errorf("Label = %q", a.Classification.Label)
	}
	if a.Classification.Source != model.SourceRule {
		t.Errorf("Source = %q, want rule", a.Classification.Source)
	}
	if a.Classification.Distribution == nil {
		t.Error("trained fallback should attach its distribution for transparency")
	}
}

func TestAnalyze_LowRuleConfidenceYieldsToStatistical(t *testing.T) {
	e := newTestEngine(true)
	trainFallback(t, e)

	// No taxonomy indicator matches, rule confidence is 0; the trained
	// model recognizes its own corpus with confidence > 0.
	events := []model.LogEvent{{Index: 0, Text: "zorple glib marker showed up"}}

	a := e.Analyze(events, nil)

	if a.Classification.Source != model.SourceStatistical {
		t.Fatalf("Source = %q, want statistical", a.Classification.Source)
	}
	if a.Classification.Label != "Flaky:Environment" {
		t.Errorf("Label = %q", a.Classification.Label)
	}
	if a.Classification.Confidence <= 0 {
		t.Errorf("Confidence = %v, want > 0", a.Classification.Confidence)
	}
	if a.Classification.Scores == nil {
		t.Error("rule scores must be preserved for audit")
	}
}

func TestAnalyze_LowStatisticalConfidenceDoesNotOverride(t *testing.T) {
	e := New(testTaxonomy(), bayes.New(true), 0.99)
	trainFallback(t, e)

	// Rule evidence exists (confidence 0.5 < threshold 0.99) and the
	// statistical model cannot beat it on assertion-flavored text.
	events := []model.LogEvent{
		{Index: 0, Text: "AssertionError expected got"},
		{Index: 1, Text: "request timed out"},
	}

	a := e.Analyze(events, nil)

	if a.Classification.Source == model.SourceStatistical &&
		a.Classification.Confidence <= 0.5 {
		t.Errorf("statistical result won without higher confidence: %+v", a.Classification)
	}
	if a.Classification.Scores["Test:Failure:Assertion"] != 2 {
		t.Errorf("Scores = %v", a.Classification.Scores)
	}
}

func TestAnalyze_AttributionWiredThrough(t *testing.T) {
	e := newTestEngine(false)
	events := []model.LogEvent{
		{Index: 0, Text: "AssertionError: expected 2 got 3"},
		{Index: 1, Text: "Test failed: test_authentication"},
	}
	commits := []model.Commit{
		{SHA: "abc1234", Author: "dev@example.com", ChangedFiles: []string{"tests/test_authentication.py"}},
	}

	a := e.Analyze(events, commits)

	if a.Attribution == nil {
		t.Fatal("expected an attribution")
	}
	if a.Attribution.SHA != "abc1234" || a.Attribution.Score != 2 {
		t.Errorf("Attribution = %+v", a.Attribution)
	}
}
