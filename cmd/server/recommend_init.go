// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marketlens/internal/config"
	"github.com/tomtom215/marketlens/internal/recommend"
	"github.com/tomtom215/marketlens/internal/recommend/algorithms"
	"github.com/tomtom215/marketlens/internal/store"
)

// initRecommend builds the content and collaborative engines and the hybrid
// engine that blends them. Both engines read from st; snapshots are written
// back to it.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, st store.Repository, logger zerolog.Logger) (*recommend.Engine, error) {
	engineCfg := cfg.Recommend.EngineConfig()

	logger.Info().
		Float64("content_weight", engineCfg.Weights.Content).
		Float64("collaborative_weight", engineCfg.Weights.Collaborative).
		Int("factors", cfg.Recommend.Factors).
		Dur("train_interval", engineCfg.Training.Interval).
		Bool("train_on_startup", engineCfg.Training.OnStartup).
		Msg("initializing recommendation engine")

	content := algorithms.NewContentBased(st, cfg.Recommend.ContentConfig())
	collab := algorithms.NewCollaborative(st, cfg.Recommend.CollaborativeConfig())

	engine, err := recommend.NewEngine(engineCfg, content, collab, st, logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	return engine, nil
}
