// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marketlens/internal/replay"
)

// Streamer is the part of replay.Replayer the service controls.
type Streamer interface {
	IsStreaming() bool
	Stop() error
}

// ReplayService ties a replayer's lifetime to the supervisor tree.
//
// Replays are started and stopped through the API; this service only makes
// sure a running replay is stopped when the process shuts down, so no write
// is cut off halfway.
type ReplayService struct {
	replayer Streamer
	logger   zerolog.Logger
	name     string
}

// NewReplayService creates a new replay lifecycle service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReplayService(replayer Streamer, logger zerolog.Logger) *ReplayService {
	return &ReplayService{
		replayer: replayer,
		logger:   logger.With().Str("service", "replay").Logger(),
		name:     "replay-service",
	}
}

// Serve implements suture.Service.
func (s *ReplayService) Serve(ctx context.Context) error {
	<-ctx.Done()

	if !s.replayer.IsStreaming() {
		return ctx.Err()
	}

	s.logger.Info().Msg("stopping interaction replay for shutdown")
	err := s.replayer.Stop()
	switch {
	case err == nil, errors.Is(err, replay.ErrNotStreaming):
	case errors.Is(err, replay.ErrStopTimeout):
		s.logger.Warn().Err(err).Msg("replay did not stop in time")
	default:
		s.logger.Error().Err(err).Msg("failed to stop replay")
	}
	return ctx.Err()
}

// String returns the service name for logging.
func (s *ReplayService) String() string {
	return s.name
}
