// Package server exposes the analysis pipeline over HTTP. All structural
// validation of request bodies happens here; the core packages only ever
// see well-shaped inputs.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/crimson-sun/sawmill/internal/engine"
	"github.com/crimson-sun/sawmill/internal/engine/bayes"
	"github.com/crimson-sun/sawmill/internal/model"
	"github.com/crimson-sun/sawmill/internal/normalize"
	"github.com/crimson-sun/sawmill/internal/notify"
	"github.com/crimson-sun/sawmill/internal/report"
	"github.com/crimson-sun/sawmill/internal/store"
	"github.com/crimson-sun/sawmill/internal/taxonomy"
)

// Server wires the pipeline to HTTP handlers.
type Server struct {
	engine *engine.Engine
	norm   *normalize.Normalizer
	store  store.Store
	sink   notify.Sink // nil disables notification
}

// New creates a Server over the given pipeline components.
// Sink may be nil when no notification sinks are configured.
func New(eng *engine.Engine, norm *normalize.Normalizer, st store.Store, sink notify.Sink) *Server {
	return &Server{engine: eng, norm: norm, store: st, sink: sink}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("GET /build/{id}", s.handleGetBuild)
	mux.HandleFunc("GET /build/{id}/report.md", s.handleReport)
	mux.HandleFunc("GET /taxonomy", s.handleTaxonomy)
	mux.HandleFunc("GET /features", s.handleFeatures)
	mux.HandleFunc("POST /train", s.handleTrain)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ingestResponse is the condensed ingest result; the full record is
// available from GET /build/{id}.
type ingestResponse struct {
	BuildID     string                   `json:"build_id"`
	Label       string                   `json:"label"`
	Confidence  float64                  `json:"confidence"`
	Summary     string                   `json:"summary"`
	Attribution *model.AttributionResult `json:"attribution"`
	Status      string                   `json:"status"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var payload model.BuildPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if payload.BuildID == "" {
		payload.BuildID = uuid.NewString()
	}

	events := s.norm.Normalize(payload.Log)
	analysis := s.engine.Analyze(events, payload.Commits)

	rec := model.BuildRecord{
		BuildID:     payload.BuildID,
		RawLog:      payload.Log,
		Metadata:    payload.Metadata,
		Commits:     payload.Commits,
		Events:      events,
		Label:       analysis.Classification.Label,
		Confidence:  analysis.Classification.Confidence,
		Scores:      analysis.Classification.Scores,
		Summary:     analysis.Summary,
		Attribution: analysis.Attribution,
		IngestedAt:  time.Now().UnixMilli(),
	}
	if err := s.store.Put(r.Context(), rec); err != nil {
		slog.Error("storing build record", "build_id", rec.BuildID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store build record")
		return
	}

	if s.sink != nil {
		if err := s.sink.Publish(r.Context(), notify.FromRecord(rec, analysis.Classification.Source)); err != nil {
			slog.Warn("publishing notice", "build_id", rec.BuildID, "err", err)
		}
	}

	slog.Info("build ingested",
		"build_id", rec.BuildID,
		"label", rec.Label,
		"confidence", rec.Confidence,
		"source", analysis.Classification.Source,
		"events", len(events),
	)

	writeJSON(w, http.StatusOK, ingestResponse{
		BuildID:     rec.BuildID,
		Label:       rec.Label,
		Confidence:  rec.Confidence,
		Summary:     rec.Summary.Summary,
		Attribution: rec.Attribution,
		Status:      "success",
	})
}

func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "build not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load build record")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "build not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load build record")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(report.Markdown(rec)))
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, _ *http.Request) {
	out, err := taxonomy.ToYAML(s.engine.Taxonomy())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render taxonomy")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(out)
}

func (s *Server) handleFeatures(w http.ResponseWriter, _ *http.Request) {
	features := map[string]string{
		"log_normalization":   "active",
		"rule_classification": "active",
		"summarization":       "active",
		"commit_attribution":  "active",
		"reporting":           "active",
	}
	switch s.engine.Fallback().State() {
	case bayes.StateDisabled:
		features["statistical_classification"] = "deferred"
	case bayes.StateUntrained:
		features["statistical_classification"] = "available"
	case bayes.StateTrained:
		features["statistical_classification"] = "active"
	}
	writeJSON(w, http.StatusOK, features)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var samples []model.TrainingSample
	if err := json.NewDecoder(r.Body).Decode(&samples); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	err := s.engine.Fallback().Train(samples)
	switch {
	case errors.Is(err, bayes.ErrDisabled):
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "deferred",
			"message": "statistical classification not enabled",
		})
	case errors.Is(err, bayes.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "training failed: "+err.Error())
	default:
		slog.Info("statistical model trained", "samples", len(samples))
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "success",
			"message": "model trained",
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"builds_stored":     n,
		"statistical_state": s.engine.Fallback().State().String(),
		"timestamp":         time.Now().UnixMilli(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
