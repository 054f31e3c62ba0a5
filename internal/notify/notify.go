// Package notify publishes condensed analysis outcomes to configured sinks
// so downstream tooling (dashboards, chat bots, audit trails) learns about
// classified failures without polling the API.
package notify

import (
	"context"

	"github.com/crimson-sun/sawmill/internal/model"
)

// Notice is the condensed outcome of one build analysis. It carries enough
// to alert on; the full record stays in the store under BuildID.
type Notice struct {
	BuildID       string  `json:"build_id"`
	Label         string  `json:"label"`
	Confidence    float64 `json:"confidence"`
	Source        string  `json:"source"`
	Summary       string  `json:"summary"`
	CulpritSHA    string  `json:"culprit_sha,omitempty"`
	CulpritAuthor string  `json:"culprit_author,omitempty"`
	IngestedAt    int64   `json:"ingested_at"`
}

// Sink is a destination for analysis notices.
type Sink interface {
	Publish(ctx context.Context, n Notice) error
	Close() error
}

// FromRecord builds a Notice from a stored build record.
func FromRecord(rec model.BuildRecord, source model.Source) Notice {
	n := Notice{
		BuildID:    rec.BuildID,
		Label:      rec.Label,
		Confidence: rec.Confidence,
		Source:     string(source),
		Summary:    rec.Summary.Summary,
		IngestedAt: rec.IngestedAt,
	}
	if rec.Attribution != nil {
		n.CulpritSHA = rec.Attribution.SHA
		n.CulpritAuthor = rec.Attribution.Author
	}
	return n
}
