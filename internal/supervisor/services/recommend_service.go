// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marketlens/internal/recommend"
)

// defaultTrainInterval applies when no positive interval is configured.
const defaultTrainInterval = 24 * time.Hour

// Trainer is the part of recommend.Engine the training service needs.
type Trainer interface {
	Train(ctx context.Context) error
}

// RecommendServiceConfig holds configuration for the training service.
type RecommendServiceConfig struct {
	// TrainOnStartup trains once as soon as the service starts.
	TrainOnStartup bool

	// TrainInterval is how often models are retrained.
	TrainInterval time.Duration

	// Ready, when set, holds back the first training until it is closed,
	// typically by BootstrapService once the data files are imported.
	Ready <-chan struct{}
}

// RecommendService retrains the hybrid engine on a schedule.
//
// Training failures are logged and retried at the next tick; they never end
// Serve, so the supervisor does not count them as service failures. The
// engine keeps serving its previous models meanwhile.
type RecommendService struct {
	engine Trainer
	config RecommendServiceConfig
	logger zerolog.Logger
	name   string
}

// NewRecommendService creates a new training service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommendService(engine Trainer, cfg RecommendServiceConfig, logger zerolog.Logger) *RecommendService {
	if cfg.TrainInterval <= 0 {
		cfg.TrainInterval = defaultTrainInterval
	}
	return &RecommendService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "recommend").Logger(),
		name:   "recommend-service",
	}
}

// Serve implements suture.Service.
func (s *RecommendService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("recommendation service starting")

	if s.config.Ready != nil {
		select {
		case <-s.config.Ready:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if s.config.TrainOnStartup {
		s.train(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("recommendation service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.train(ctx, "schedule")
		}
	}
}

func (s *RecommendService) train(ctx context.Context, trigger string) {
	err := s.engine.Train(ctx)
	switch {
	case err == nil:
		return
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Debug().Str("trigger", trigger).Msg("training skipped, a cycle is already running")
	case errors.Is(err, recommend.ErrInsufficientData):
		s.logger.Info().Str("trigger", trigger).Err(err).Msg("not enough data to train yet")
	case ctx.Err() != nil:
		// Shutdown interrupted the cycle.
	default:
		s.logger.Warn().Str("trigger", trigger).Err(err).Msg("model training failed")
	}
}

// String returns the service name for logging.
func (s *RecommendService) String() string {
	return s.name
}
