// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marketlens/internal/config"
	"github.com/tomtom215/marketlens/internal/store"
)

// initStore opens the configured backend, wraps it in the write breaker and
// puts the item details cache in front.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initStore(cfg *config.Config, logger zerolog.Logger) (store.Repository, error) {
	var inner store.Repository

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		inner = store.NewMemoryStore()
		logger.Warn().Msg("using in-memory store, data is lost on restart")
	default:
		bs, err := store.OpenBadger(cfg.Storage.BadgerConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		inner = bs
		logger.Info().
			Str("path", cfg.Storage.Path).
			Bool("in_memory", cfg.Storage.InMemory).
			Msg("badger store opened")
	}

	guarded := store.NewBreakerStore(inner, cfg.Storage.BreakerConfig(), logger)
	return store.NewCachedStore(guarded, cfg.Storage.DetailsCacheConfig()), nil
}
