// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/marketlens/internal/middleware"
	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/recommend"
	"github.com/tomtom215/marketlens/internal/replay"
	"github.com/tomtom215/marketlens/internal/store"
)

// Recommender is the hybrid engine as the API uses it. *recommend.Engine
// satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, userID string, k int) ([]models.ScoredCandidate, error)
	Generate(ctx context.Context, userID string, k int) (*models.RecommendationSnapshot, error)
	Formatted(ctx context.Context, userID string, k int) (*models.RecommendationOutput, error)
	Train(ctx context.Context) error
	Status() recommend.TrainingStatus
	Config() *recommend.Config
}

// Streamer controls interaction replay. *replay.Replayer satisfies it.
type Streamer interface {
	Start(ctx context.Context, speed int) error
	Stop() error
	IsStreaming() bool
	Status() replay.Status
}

// HandlerConfig holds request-level settings.
type HandlerConfig struct {
	// DefaultSpeed is the replay speed when speed_factor is omitted.
	DefaultSpeed int

	// RequestTimeout bounds recommendation and evaluation work per request.
	RequestTimeout time.Duration

	// EvaluationKs are the cutoffs reported when k is omitted.
	EvaluationKs []int
}

// DefaultHandlerConfig returns the default request settings.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		DefaultSpeed:   100,
		RequestTimeout: 30 * time.Second,
		EvaluationKs:   []int{5, 10, 20},
	}
}

// Handler serves the recommendation API.
type Handler struct {
	engine    Recommender
	store     store.Repository
	replayer  Streamer
	perf      *middleware.PerformanceMonitor
	config    HandlerConfig
	startTime time.Time
}

// NewHandler creates the API handler. perf may be nil, in which case the
// performance endpoint reports nothing.
func NewHandler(engine Recommender, st store.Repository, replayer Streamer, perf *middleware.PerformanceMonitor, cfg HandlerConfig) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("recommender is required")
	}
	if st == nil {
		return nil, errors.New("store is required")
	}
	if replayer == nil {
		return nil, errors.New("replayer is required")
	}

	def := DefaultHandlerConfig()
	if cfg.DefaultSpeed <= 0 {
		cfg.DefaultSpeed = def.DefaultSpeed
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if len(cfg.EvaluationKs) == 0 {
		cfg.EvaluationKs = def.EvaluationKs
	}

	return &Handler{
		engine:    engine,
		store:     st,
		replayer:  replayer,
		perf:      perf,
		config:    cfg,
		startTime: time.Now(),
	}, nil
}
