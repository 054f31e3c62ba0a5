package model

// Unclassified is the label returned when no evidence matched.
const Unclassified = "UNCLASSIFIED"

// Source identifies which classifier produced the final label.
type Source string

const (
	SourceRule        Source = "rule"
	SourceStatistical Source = "statistical"
)

// ClassificationResult is the outcome of classifying one event sequence.
// Scores holds the per-code evidence accumulated by the rule classifier
// and is preserved even when the statistical fallback supplies the label.
type ClassificationResult struct {
	Label      string         `json:"label"`
	Confidence float64        `json:"confidence"`
	Scores     map[string]int `json:"scores"`
	Source     Source         `json:"source"`

	// Distribution is the statistical model's label distribution, attached
	// for transparency whenever the model was consulted. May be nil.
	Distribution map[string]float64 `json:"distribution,omitempty"`

	// GenericHits counts weight accumulated by the generic fallback rules
	// (bare "error"/"exception"/"failed"). Non-zero with an empty Scores
	// map means "something failed" without taxonomy evidence.
	GenericHits int `json:"generic_hits,omitempty"`
}

// AttributionResult names the commit most likely responsible for a failure.
// Absent (nil) when no candidate scored above zero.
type AttributionResult struct {
	SHA           string   `json:"sha"`
	Author        string   `json:"author"`
	Score         int      `json:"score"`
	ChangedFiles  []string `json:"changed_files"`
	TestsDetected []string `json:"tests_detected"`
}

// Summary holds the evidence extracted from a log plus a one-line rendering.
type Summary struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Exceptions []string `json:"exceptions"`
	Tests      []string `json:"tests"`
	Assertion  string   `json:"assertion,omitempty"`
	Summary    string   `json:"summary"`
}
