package sawmill

// Commit is a candidate commit considered for attribution.
type Commit struct {
	SHA          string   `json:"sha"`
	Author       string   `json:"author"`
	Message      string   `json:"message,omitempty"`
	ChangedFiles []string `json:"changed_files"`
}

// Sample is one labeled log used to train the statistical fallback.
type Sample struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Attribution names the commit most likely responsible for a failure.
type Attribution struct {
	SHA           string   `json:"sha"`
	Author        string   `json:"author"`
	Score         int      `json:"score"`
	ChangedFiles  []string `json:"changed_files"`
	TestsDetected []string `json:"tests_detected"`
}

// Analysis is the full outcome of analyzing one build log.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Analysis struct {
	Label       string         `json:"label"`       // Taxonomy code or UNCLASSIFIED
	Confidence  float64        `json:"confidence"`  // 0.0 to 1.0
	Scores      map[string]int `json:"scores"`      // Per-code rule evidence
	Source      string         `json:"source"`      // "rule" or "statistical"
	Summary     string         `json:"summary"`     // One-line human summary
	Attribution *Attribution   `json:"attribution"` // Nil when no commit scored
}
