// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/marketlens/internal/store"
)

// BootstrapStore is what the bootstrap import writes to.
type BootstrapStore interface {
	store.ItemWriter
	store.InteractionWriter
	GetUserIDs(ctx context.Context) ([]string, error)
}

// BootstrapConfig selects which data files are imported at startup.
type BootstrapConfig struct {
	CatalogPath  string
	ActivityPath string

	// ImportCatalog upserts every catalog entry. Upserts are idempotent, so
	// the catalog is re-read on every start.
	ImportCatalog bool

	// ImportActivity appends the activity log, but only into an empty store
	// so restarts do not duplicate interactions.
	ImportActivity bool
}

// BootstrapService imports the data files once and then leaves the tree.
//
// Missing files are not an error: the service logs them and finishes. Any
// other failure is returned so the supervisor retries with backoff. Ready is
// closed after the first finished run, whatever it imported.
type BootstrapService struct {
	store  BootstrapStore
	config BootstrapConfig
	logger zerolog.Logger
	name   string

	ready     chan struct{}
	readyOnce sync.Once
}

// NewBootstrapService creates the startup import service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBootstrapService(st BootstrapStore, cfg BootstrapConfig, logger zerolog.Logger) *BootstrapService {
	return &BootstrapService{
		store:  st,
		config: cfg,
		logger: logger.With().Str("service", "bootstrap").Logger(),
		name:   "bootstrap-service",
		ready:  make(chan struct{}),
	}
}

// Ready is closed once the import has finished.
func (s *BootstrapService) Ready() <-chan struct{} {
	return s.ready
}

// Serve implements suture.Service.
func (s *BootstrapService) Serve(ctx context.Context) error {
	start := time.Now()

	if s.config.ImportCatalog {
		if err := s.importCatalog(ctx); err != nil {
			return err
		}
	}
	if s.config.ImportActivity {
		if err := s.importActivity(ctx); err != nil {
			return err
		}
	}

	s.logger.Info().
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("bootstrap import finished")
	s.readyOnce.Do(func() { close(s.ready) })

	return suture.ErrDoNotRestart
}

func (s *BootstrapService) importCatalog(ctx context.Context) error {
	n, err := store.ImportCatalogFile(ctx, s.config.CatalogPath, s.store)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().Str("path", s.config.CatalogPath).Msg("catalog file not found, skipping import")
		return nil
	}
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	s.logger.Info().Str("path", s.config.CatalogPath).Int("items", n).Msg("catalog imported")
	return nil
}

func (s *BootstrapService) importActivity(ctx context.Context) error {
	users, err := s.store.GetUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("check existing activity: %w", err)
	}
	if len(users) > 0 {
		s.logger.Info().Int("users", len(users)).Msg("store already has activity, skipping import")
		return nil
	}

	n, err := store.ImportActivityFile(ctx, s.config.ActivityPath, s.store)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().Str("path", s.config.ActivityPath).Msg("activity file not found, skipping import")
		return nil
	}
	if err != nil {
		return fmt.Errorf("import activity: %w", err)
	}
	s.logger.Info().Str("path", s.config.ActivityPath).Int("interactions", n).Msg("activity imported")
	return nil
}

// String returns the service name for logging.
func (s *BootstrapService) String() string {
	return s.name
}
