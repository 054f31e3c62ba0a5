package model

// LogEvent is a single normalized line from a raw build log.
// Index is the line's position in the original log. Ordering by Index is
// significant: downstream heuristics weight later events more heavily.
type LogEvent struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp,omitempty"`
	Level     string `json:"level,omitempty"`
	Text      string `json:"text"`
}
