package sawmill

import (
	"errors"
	"testing"
)

const assertionLog = `2024-03-01 10:00:00 INFO Starting test suite
2024-03-01 10:00:05 ERROR AssertionError: expected 200 got 500
Test failed: test_login_returns_token
`

func TestAnalyzeKnownLog(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	a := s.Analyze(assertionLog, nil)
	if a.Label != "Test:Failure:Assertion" {
		t.Errorf("Label = %q, want Test:Failure:Assertion", a.Label)
	}
	if a.Confidence <= 0 {
		t.Errorf("Confidence = %f, want > 0", a.Confidence)
	}
	if a.Source != "rule" {
		t.Errorf("Source = %q, want rule", a.Source)
	}
	if a.Summary == "" {
		t.Error("Summary is empty")
	}
}

func TestAnalyzeWithCommits(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	a := s.Analyze(assertionLog, []Commit{
		{SHA: "abc1234", Author: "dev@example.com", ChangedFiles: []string{"tests/test_login_returns_token.py"}},
		{SHA: "def5678", Author: "other@example.com", ChangedFiles: []string{"docs/README.md"}},
	})
	if a.Attribution == nil {
		t.Fatal("Attribution is nil, want abc1234")
	}
	if a.Attribution.SHA != "abc1234" {
		t.Errorf("Attribution.SHA = %q, want abc1234", a.Attribution.SHA)
	}
	if a.Attribution.Score <= 0 {
		t.Errorf("Attribution.Score = %d, want > 0", a.Attribution.Score)
	}
}

func TestAnalyzeEmptyLog(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	a := s.Analyze("", nil)
	if a.Label != "UNCLASSIFIED" {
		t.Errorf("Label = %q, want UNCLASSIFIED", a.Label)
	}
	if a.Confidence != 0 {
		t.Errorf("Confidence = %f, want 0", a.Confidence)
	}
}

func TestNewBadTaxonomyPathReturnsError(t *testing.T) {
	if _, err := New(WithTaxonomyFile("/nonexistent/taxonomy.yaml")); err == nil {
		t.Fatal("expected error for bad taxonomy path, got nil")
	}
}

func TestTrainDisabledByDefault(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	err = s.Train([]Sample{
		{Text: "connection refused", Label: "Infra:Network:Timeout"},
		{Text: "assert failed", Label: "Test:Failure:Assertion"},
	})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Train error = %v, want ErrDisabled", err)
	}
}

func TestTrainInsufficientData(t *testing.T) {
	s, err := New(WithStatisticalFallback(true))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	err = s.Train([]Sample{{Text: "only one label here", Label: "Test:Failure:Assertion"}})
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Train error = %v, want ErrInsufficientData", err)
	}
}

func TestStatisticalFallbackSuppliesLabel(t *testing.T) {
	s, err := New(WithStatisticalFallback(true))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	samples := []Sample{
		{Text: "zorple glib frobnicated the widget", Label: "Infra:Network:Timeout"},
		{Text: "zorple glib widget frobnication stalled", Label: "Infra:Network:Timeout"},
		{Text: "quux parser emitted malformed bytecode", Label: "Build:Compilation:Error"},
		{Text: "quux bytecode emission malformed again", Label: "Build:Compilation:Error"},
	}
	if err := s.Train(samples); err != nil {
		t.Fatalf("Train() error: %v", err)
	}

	// No taxonomy indicator matches this text, so the rule classifier
	// yields nothing and the trained model decides.
	a := s.Analyze("zorple glib frobnicated the widget\n", nil)
	if a.Source != "statistical" {
		t.Errorf("Source = %q, want statistical", a.Source)
	}
	if a.Label != "Infra:Network:Timeout" {
		t.Errorf("Label = %q, want Infra:Network:Timeout", a.Label)
	}
}
