// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package replay

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/store"
)

// FileSource reads the interaction log from a JSON activity file. When
// CatalogPath and Catalog are set, the product catalog is imported first so
// replayed interactions always reference known items.
type FileSource struct {
	ActivityPath string
	CatalogPath  string
	Catalog      store.ItemWriter
	Logger       zerolog.Logger
}

// Load implements EventSource.
func (s *FileSource) Load(ctx context.Context) ([]models.Interaction, error) {
	if s.CatalogPath != "" && s.Catalog != nil {
		n, err := store.ImportCatalogFile(ctx, s.CatalogPath, s.Catalog)
		if err != nil {
			return nil, fmt.Errorf("import catalog: %w", err)
		}
		s.Logger.Info().Int("items", n).Str("path", s.CatalogPath).Msg("imported product catalog")
	}

	events, err := store.ReadActivityFile(s.ActivityPath)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// SliceSource replays a fixed in-memory log.
type SliceSource []models.Interaction

// Load implements EventSource.
func (s SliceSource) Load(_ context.Context) ([]models.Interaction, error) {
	return slices.Clone(s), nil
}
