package rules

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crimson-sun/sawmill/internal/model"
)

func testTaxonomy() []model.FailureCode {
	return []model.FailureCode{
		{Code: "Test:Failure:Assertion", Indicators: []string{"AssertionError"}},
		{Code: "Infra:Network:Timeout", Indicators: []string{"timed out"}},
	}
}

func TestClassify_AssertionScenario(t *testing.T) {
	events := []model.LogEvent{
		{Index: 0, Text: "AssertionError: expected 2 got 3"},
		{Index: 1, Text: "Test failed: test_authentication"},
	}

	got := Classify(events, testTaxonomy())

	if got.Label != "Test:Failure:Assertion" {
		t.Errorf("Label = %q", got.Label)
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", got.Confidence)
	}
	if diff := cmp.Diff(map[string]int{"Test:Failure:Assertion": 2}, got.Scores); diff != "" {
		t.Errorf("Scores mismatch (-want +got):\n%s", diff)
	}
	if got.Source != model.SourceRule {
		t.Errorf("Source = %q", got.Source)
	}
}

func TestClassify_EmptyEvents(t *testing.T) {
	got := Classify(nil, testTaxonomy())

	if got.Label != model.Unclassified {
		t.Errorf("Label = %q, want UNCLASSIFIED", got.Label)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
	if len(got.Scores) != 0 {
		t.Errorf("Scores = %v, want empty", got.Scores)
	}
}

func TestClassify_GenericHitsOnly(t *testing.T) {
	events := []model.LogEvent{
		{Index: 0, Text: "Build step failed with exit code 1"},
	}

	got := Classify(events, testTaxonomy())

	if got.Label != model.Unclassified {
		t.Errorf("Label = %q, want UNCLASSIFIED", got.Label)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
	if got.GenericHits == 0 {
		t.Error("expected generic hits for a 'failed' line")
	}
}

func TestClassify_ConfidenceIsScoreShare(t *testing.T) {
	events := []model.LogEvent{
		{Index: 0, Text: "AssertionError: expected true"},
		{Index: 1, Text: "AssertionError: expected false"},
		{Index: 2, Text: "request timed out after 30s"},
	}

	got := Classify(events, testTaxonomy())

	total := 0
	for _, s := range got.Scores {
		total += s
	}
	if total == 0 {
		t.Fatal("no evidence accumulated")
	}
	want := float64(got.Scores[got.Label]) / float64(total)
	if got.Confidence != want {
		t.Errorf("Confidence = %v, want exactly %v", got.Confidence, want)
	}
	if got.Label != "Test:Failure:Assertion" {
		t.Errorf("Label = %q (scores %v)", got.Label, got.Scores)
	}
}

func TestClassify_TieBreakByDeclarationOrder(t *testing.T) {
	taxonomy := []model.FailureCode{
		{Code: "First:Code", Indicators: []string{"alpha"}},
		{Code: "Second:Code", Indicators: []string{"beta"}},
	}
	events := []model.LogEvent{
		{Index: 0, Text: "alpha happened"},
		{Index: 1, Text: "beta happened"},
	}

	for i := 0; i < 50; i++ {
		got := Classify(events, taxonomy)
		if got.Label != "First:Code" {
			t.Fatalf("run %d: Label = %q, want First:Code", i, got.Label)
		}
		if got.Confidence != 0.5 {
			t.Fatalf("run %d: Confidence = %v, want 0.5", i, got.Confidence)
		}
	}

	// Reversed declaration order flips the winner.
	reversed := []model.FailureCode{taxonomy[1], taxonomy[0]}
	if got := Classify(events, reversed); got.Label != "Second:Code" {
		t.Errorf("reversed taxonomy: Label = %q, want Second:Code", got.Label)
	}
}

func TestClassify_EventRulePairIdempotent(t *testing.T) {
	// An indicator occurring many times in one event counts once.
	taxonomy := []model.FailureCode{
		{Code: "A", Indicators: []string{"boom"}},
		{Code: "B", Indicators: []string{"crash"}},
	}
	events := []model.LogEvent{
		{Index: 0, Text: "boom boom boom boom"},
		{Index: 1, Text: "crash"},
	}

	got := Classify(events, taxonomy)
	if got.Scores["A"] != 2 || got.Scores["B"] != 2 {
		t.Errorf("Scores = %v, want A:2 B:2", got.Scores)
	}
}

func TestClassify_OneEventFeedsMultipleCodes(t *testing.T) {
	taxonomy := []model.FailureCode{
		{Code: "Net", Indicators: []string{"connection refused"}},
		{Code: "Deploy", Indicators: []string{"deploy"}},
	}
	events := []model.LogEvent{
		{Index: 0, Text: "deploy aborted: connection refused by registry"},
	}

	got := Classify(events, taxonomy)
	if got.Scores["Net"] != 2 || got.Scores["Deploy"] != 2 {
		t.Errorf("Scores = %v, want Net:2 Deploy:2", got.Scores)
	}
}

func TestClassify_CaseInsensitiveIndicators(t *testing.T) {
	taxonomy := []model.FailureCode{
		{Code: "OOM", Indicators: []string{"OutOfMemoryError"}},
	}
	events := []model.LogEvent{
		{Index: 0, Text: "java.lang.OUTOFMEMORYERROR: heap space"},
	}

	got := Classify(events, taxonomy)
	if got.Label != "OOM" {
		t.Errorf("Label = %q, want OOM", got.Label)
	}
}

func TestCompile_ReusableAndConcurrent(t *testing.T) {
	rs := Compile(testTaxonomy())
	events := []model.LogEvent{{Index: 0, Text: "AssertionError"}}

	done := make(chan model.ClassificationResult, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- rs.Classify(events) }()
	}
	for i := 0; i < 8; i++ {
		got := <-done
		if got.Label != "Test:Failure:Assertion" {
			t.Fatalf("concurrent run: Label = %q", got.Label)
		}
	}
}

func BenchmarkClassify(b *testing.B) {
	rs := Compile(testTaxonomy())
	events := make([]model.LogEvent, 200)
	for i := range events {
		events[i] = model.LogEvent{Index: i, Text: fmt.Sprintf("line %d: request timed out", i)}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rs.Classify(events)
	}
}
