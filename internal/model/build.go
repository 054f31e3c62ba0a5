package model

// BuildPayload is the ingestion input: a raw log plus optional metadata
// and candidate commits. BuildID may be empty; the server generates one.
type BuildPayload struct {
	BuildID  string            `json:"build_id"`
	Log      string            `json:"log"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Commits  []Commit          `json:"commits,omitempty"`
}

// BuildRecord is the stored result of one ingestion.
type BuildRecord struct {
	BuildID     string             `json:"build_id"`
	RawLog      string             `json:"raw_log"`
	Metadata    map[string]string  `json:"metadata,omitempty"`
	Commits     []Commit           `json:"commits,omitempty"`
	Events      []LogEvent         `json:"events"`
	Label       string             `json:"label"`
	Confidence  float64            `json:"confidence"`
	Scores      map[string]int     `json:"scores"`
	Summary     Summary            `json:"summary"`
	Attribution *AttributionResult `json:"attribution,omitempty"`
	IngestedAt  int64              `json:"ingested_at_unix_ms"`
}

// TrainingSample is one labeled text for the statistical fallback.
type TrainingSample struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}
