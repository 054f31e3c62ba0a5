// Package bayes implements the optional statistical fallback classifier: a
// term-frequency multinomial naive Bayes model trained at runtime from
// labeled log text. Degraded availability (disabled, untrained) is a
// first-class return state, never an error or panic.
package bayes

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/crimson-sun/sawmill/internal/model"
)

// ErrDisabled is returned by Train when the fallback is switched off.
var ErrDisabled = errors.New("bayes: statistical fallback disabled")

// ErrInsufficientData is returned by Train for an empty sample set or
// fewer than two distinct labels. The prior model stays active.
var ErrInsufficientData = errors.New("bayes: need at least one sample and two distinct labels")

// State describes the fallback's capability, checked by callers before
// trusting statistical output.
type State int

const (
	StateDisabled State = iota
	StateUntrained
	StateTrained
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateUntrained:
		return "untrained"
	case StateTrained:
		return "trained"
	default:
		return "unknown"
	}
}

// Prediction is the statistical classifier's output for one text.
type Prediction struct {
	Label        string
	Confidence   float64
	Distribution map[string]float64
}

// Classifier is the process-wide fallback model. Predict is lock-free and
// reads an immutable snapshot; Train builds a new snapshot and swaps it
// atomically, so concurrent readers observe the old or the new model,
// never a partially trained one. Train calls are serialized by a mutex.
type Classifier struct {
	enabled bool
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// snapshot is one immutable trained model.
type snapshot struct {
	labels    []string                      // sorted, for deterministic argmax
	logPrior  map[string]float64            // label → log P(label)
	logCond   map[string]map[string]float64 // label → token → log P(token|label)
	logUnseen map[string]float64            // label → log P of a vocab token unseen in that label
	vocab     map[string]bool
}

// New creates a Classifier. A disabled classifier never trains and always
// reports unavailable from Predict.
func New(enabled bool) *Classifier {
	return &Classifier{enabled: enabled}
}

// State reports the current capability.
func (c *Classifier) State() State {
	if !c.enabled {
		return StateDisabled
	}
	if c.current.Load() == nil {
		return StateUntrained
	}
	return StateTrained
}

// Train fits a fresh model from the samples and atomically replaces the
// prior one. On validation failure the prior model is left untouched.
func (c *Classifier) Train(samples []model.TrainingSample) error {
	if !c.enabled {
		return ErrDisabled
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(samples) == 0 {
		return ErrInsufficientData
	}

	tokenCounts := make(map[string]map[string]int) // label → token → count
	labelTokens := make(map[string]int)            // label → total tokens
	labelDocs := make(map[string]int)              // label → sample count
	vocab := make(map[string]bool)

	for _, s := range samples {
		if s.Label == "" {
			continue
		}
		labelDocs[s.Label]++
		counts := tokenCounts[s.Label]
		if counts == nil {
			counts = make(map[string]int)
			tokenCounts[s.Label] = counts
		}
		for _, tok := range tokenize(s.Text) {
			counts[tok]++
			labelTokens[s.Label]++
			vocab[tok] = true
		}
	}
	if len(labelDocs) < 2 {
		return ErrInsufficientData
	}

	snap := &snapshot{
		logPrior:  make(map[string]float64, len(labelDocs)),
		logCond:   make(map[string]map[string]float64, len(labelDocs)),
		logUnseen: make(map[string]float64, len(labelDocs)),
		vocab:     vocab,
	}
	totalDocs := 0
	for label, docs := range labelDocs {
		snap.labels = append(snap.labels, label)
		totalDocs += docs
	}
	sort.Strings(snap.labels)

	v := float64(len(vocab)) + 1 // +1 keeps the denominator sane for token-free corpora
	for _, label := range snap.labels {
		snap.logPrior[label] = math.Log(float64(labelDocs[label]) / float64(totalDocs))
		denom := float64(labelTokens[label]) + v
		cond := make(map[string]float64, len(tokenCounts[label]))
		for tok, count := range tokenCounts[label] {
			cond[tok] = math.Log((float64(count) + 1) / denom)
		}
		snap.logCond[label] = cond
		snap.logUnseen[label] = math.Log(1 / denom)
	}

	c.current.Store(snap)
	return nil
}

// Predict classifies the text against the current model snapshot. The
// second return is false when the fallback is disabled or untrained.
func (c *Classifier) Predict(text string) (Prediction, bool) {
	if !c.enabled {
		return Prediction{}, false
	}
	snap := c.current.Load()
	if snap == nil {
		return Prediction{}, false
	}

	tokens := tokenize(text)
	logPost := make(map[string]float64, len(snap.labels))
	for _, label := range snap.labels {
		lp := snap.logPrior[label]
		cond := snap.logCond[label]
		for _, tok := range tokens {
			if !snap.vocab[tok] {
				continue
			}
			if v, ok := cond[tok]; ok {
				lp += v
			} else {
				lp += snap.logUnseen[label]
			}
		}
		logPost[label] = lp
	}

	// Softmax over log posteriors, shifted by the max for stability.
	maxLP := math.Inf(-1)
	for _, lp := range logPost {
		if lp > maxLP {
			maxLP = lp
		}
	}
	dist := make(map[string]float64, len(logPost))
	sum := 0.0
	for label, lp := range logPost {
		p := math.Exp(lp - maxLP)
		dist[label] = p
		sum += p
	}

	best := ""
	bestP := -1.0
	for _, label := range snap.labels {
		dist[label] /= sum
		if dist[label] > bestP {
			best = label
			bestP = dist[label]
		}
	}

	return Prediction{Label: best, Confidence: bestP, Distribution: dist}, true
}

// tokenize lowercases and splits on non-alphanumeric runes, keeping
// underscores so test identifiers survive as single tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
