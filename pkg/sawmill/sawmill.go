package sawmill

import (
	"fmt"

	"github.com/crimson-sun/sawmill/internal/engine"
	"github.com/crimson-sun/sawmill/internal/engine/bayes"
	"github.com/crimson-sun/sawmill/internal/model"
	"github.com/crimson-sun/sawmill/internal/normalize"
	"github.com/crimson-sun/sawmill/internal/taxonomy"
)

// ErrInsufficientData is returned by Train when the sample set cannot
// produce a usable model (no samples, or fewer than two distinct labels).
var ErrInsufficientData = bayes.ErrInsufficientData

// ErrDisabled is returned by Train when the statistical fallback was not
// enabled via WithStatisticalFallback.
var ErrDisabled = bayes.ErrDisabled

// Sawmill is a build-log failure analysis engine.
// It normalizes raw log text, classifies the failure against a hierarchical
// taxonomy, and scores candidate commits. Safe for concurrent use.
type Sawmill struct {
	engine *engine.Engine
	norm   *normalize.Normalizer
}

// New creates a Sawmill instance. Loading a taxonomy file and compiling the
// rule set happens once here; create one instance and reuse it.
func New(opts ...Option) (*Sawmill, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	codes := taxonomy.Default()
	if o.taxonomyPath != "" {
		var err error
		codes, err = taxonomy.Load(o.taxonomyPath)
		if err != nil {
			return nil, fmt.Errorf("sawmill: %w", err)
		}
	}

	fallback := bayes.New(o.statistical)
	eng := engine.New(codes, fallback, o.confidenceThreshold)
	return &Sawmill{
		engine: eng,
		norm:   normalize.New(o.maxEvents),
	}, nil
}

// Analyze normalizes a raw build log, classifies the failure, and scores
// the candidate commits. Commits may be nil when attribution is not wanted.
func (s *Sawmill) Analyze(rawLog string, commits []Commit) Analysis {
	events := s.norm.Normalize(rawLog)
	a := s.engine.Analyze(events, commitsToInternal(commits))
	return analysisFromInternal(a)
}

// Train fits the statistical fallback on labeled samples. Training replaces
// any previous model atomically; a failed Train leaves the prior model
// active. Returns ErrDisabled or ErrInsufficientData as appropriate.
func (s *Sawmill) Train(samples []Sample) error {
	internal := make([]model.TrainingSample, len(samples))
	for i, smp := range samples {
		internal[i] = model.TrainingSample{Text: smp.Text, Label: smp.Label}
	}
	return s.engine.Fallback().Train(internal)
}

func commitsToInternal(commits []Commit) []model.Commit {
	if commits == nil {
		return nil
	}
	out := make([]model.Commit, len(commits))
	for i, c := range commits {
		out[i] = model.Commit{
			SHA:          c.SHA,
			Author:       c.Author,
			Message:      c.Message,
			ChangedFiles: c.ChangedFiles,
		}
	}
	return out
}

func analysisFromInternal(a engine.Analysis) Analysis {
	out := Analysis{
		Label:      a.Classification.Label,
		Confidence: a.Classification.Confidence,
		Scores:     a.Classification.Scores,
		Source:     string(a.Classification.Source),
		Summary:    a.Summary.Summary,
	}
	if a.Attribution != nil {
		out.Attribution = &Attribution{
			SHA:           a.Attribution.SHA,
			Author:        a.Attribution.Author,
			Score:         a.Attribution.Score,
			ChangedFiles:  a.Attribution.ChangedFiles,
			TestsDetected: a.Attribution.TestsDetected,
		}
	}
	return out
}
