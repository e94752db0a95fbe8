// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package algorithms

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/marketlens/internal/models"
)

// ContentSource is the data needed by ContentBased.
type ContentSource interface {
	GetAllItems(ctx context.Context) ([]models.Item, error)
	GetInteractions(ctx context.Context, userID string) ([]models.Interaction, error)
}

// ContentConfig contains configuration for content-based filtering.
type ContentConfig struct {
	// PurchaseWeight is the profile weight of one purchase.
	PurchaseWeight float64

	// ViewWeight is the profile weight of one view.
	ViewWeight float64

	// ScoreFloor is the lowest score a returned item can have; the best item
	// always scores 1.
	ScoreFloor float64
}

// DefaultContentConfig returns the standard weights.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{PurchaseWeight: 3.0, ViewWeight: 1.0, ScoreFloor: 0.3}
}

// ContentBased recommends catalog items whose TF-IDF vectors are closest
// (cosine) to the weighted mean vector of the items a user interacted with.
//
// The user's history is read at request time, so new interactions affect
// recommendations immediately; only the catalog features require training.
type ContentBased struct {
	BaseAlgorithm

	cfg    ContentConfig
	source ContentSource
	index  *FeatureIndex
}

// NewContentBased creates a content-based algorithm reading from source.
func NewContentBased(source ContentSource, cfg ContentConfig) *ContentBased {
	def := DefaultContentConfig()
	if cfg.PurchaseWeight <= 0 {
		cfg.PurchaseWeight = def.PurchaseWeight
	}
	if cfg.ViewWeight <= 0 {
		cfg.ViewWeight = def.ViewWeight
	}
	if cfg.ScoreFloor <= 0 || cfg.ScoreFloor >= 1 {
		cfg.ScoreFloor = def.ScoreFloor
	}

	return &ContentBased{
		BaseAlgorithm: NewBaseAlgorithm("content"),
		cfg:           cfg,
		source:        source,
	}
}

// Train rebuilds the feature index from the catalog.
func (c *ContentBased) Train(ctx context.Context) error {
	if err := c.beginTraining(); err != nil {
		return err
	}
	defer c.endTraining()

	items, err := c.source.GetAllItems(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	index, err := BuildFeatureIndex(items)
	if err != nil {
		return err
	}

	c.commit(func() { c.index = index })
	return nil
}

// FeatureIndex returns the index currently in service, or nil.
func (c *ContentBased) FeatureIndex() *FeatureIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Recommend returns up to k unseen items most similar to the user's profile.
func (c *ContentBased) Recommend(ctx context.Context, userID string, k int) ([]models.ScoredCandidate, error) {
	index := c.FeatureIndex()
	if index == nil || k <= 0 {
		return []models.ScoredCandidate{}, nil
	}

	history, err := c.source.GetInteractions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load interactions for %s: %w", userID, err)
	}
	if len(history) == 0 {
		return []models.ScoredCandidate{}, nil
	}

	weights := c.itemWeights(history)
	profile, ok := index.Profile(weights)
	if !ok {
		return []models.ScoredCandidate{}, nil
	}
	norm := floats.Norm(profile, 2)

	candidates := make([]scored, 0, index.Len())
	for i := 0; i < index.Len(); i++ {
		id := index.ItemID(i)
		if _, seen := weights[id]; seen {
			continue
		}
		candidates = append(candidates, scored{index: i, id: id, score: index.Cosine(i, profile, norm)})
	}
	if len(candidates) == 0 {
		return []models.ScoredCandidate{}, nil
	}

	ranked := topK(candidates, k)
	best := ranked[0].score
	floor := c.cfg.ScoreFloor
	return toCandidates(ranked, models.AttributionContent, func(s float64) float64 {
		if best <= 0 {
			return floor
		}
		return clamp01(floor + (1-floor)*s/best)
	}), nil
}

// itemWeights sums the action weights per item.
func (c *ContentBased) itemWeights(history []models.Interaction) map[string]float64 {
	weights := make(map[string]float64, len(history))
	for i := range history {
		w := c.cfg.ViewWeight
		if history[i].Action == models.ActionPurchase {
			w = c.cfg.PurchaseWeight
		}
		weights[history[i].ItemID] += w
	}
	return weights
}
