// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package models

import "time"

// Attribution names the engine(s) that contributed a blended candidate.
type Attribution string

const (
	AttributionContent       Attribution = "content"
	AttributionCollaborative Attribution = "collaborative"
	AttributionHybrid        Attribution = "hybrid"
)

// Reason returns the human-readable explanation shown to API clients.
func (a Attribution) Reason() string {
	switch a {
	case AttributionContent:
		return "content-based similarity"
	case AttributionCollaborative:
		return "collaborative filtering similarity"
	default:
		return "hybrid"
	}
}

// ScoredCandidate is an item with a score in [0, 1].
type ScoredCandidate struct {
	ItemID      string      `json:"item_id"`
	Score       float64     `json:"score"`
	Attribution Attribution `json:"attribution,omitempty"`
}

// RecommendationSnapshot is the last blended result stored for a user.
type RecommendationSnapshot struct {
	UserID      string            `json:"user_id"`
	Items       []ScoredCandidate `json:"items"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// RecommendedProduct is one entry of formatted recommendation output.
type RecommendedProduct struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Reason   string  `json:"reason"`
}

// RecommendationOutput is the external recommendation schema.
type RecommendationOutput struct {
	UserID              string               `json:"user_id"`
	RecommendedProducts []RecommendedProduct `json:"recommended_products"`
}
