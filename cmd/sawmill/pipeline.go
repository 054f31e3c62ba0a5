package main

import (
	"fmt"

	"github.com/crimson-sun/sawmill/internal/config"
	"github.com/crimson-sun/sawmill/internal/engine"
	"github.com/crimson-sun/sawmill/internal/engine/bayes"
	"github.com/crimson-sun/sawmill/internal/model"
	"github.com/crimson-sun/sawmill/internal/normalize"
	"github.com/crimson-sun/sawmill/internal/taxonomy"
)

// buildPipeline assembles the engine and normalizer from configuration.
func buildPipeline(cfg config.Config) (*engine.Engine, *normalize.Normalizer, error) {
	codes, err := loadTaxonomy(cfg.Engine.TaxonomyPath)
	if err != nil {
		return nil, nil, err
	}

	fallback := bayes.New(cfg.Engine.EnableStatistical)
	eng := engine.New(codes, fallback, cfg.Engine.ConfidenceThreshold)
	norm := normalize.New(cfg.Engine.MaxEvents)
	return eng, norm, nil
}

func loadTaxonomy(path string) ([]model.FailureCode, error) {
	if path == "" {
		return taxonomy.Default(), nil
	}
	codes, err := taxonomy.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading taxonomy: %w", err)
	}
	return codes, nil
}
