// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package recommend

import (
	"cmp"
	"slices"

	"github.com/tomtom215/marketlens/internal/models"
)

// NormalizeScores min-max scales scores to [0, 1], keyed by item ID.
//
// When every score is equal the range is empty; all items then map to 1 if
// that common score is positive and to 0 otherwise.
func NormalizeScores(candidates []models.ScoredCandidate) map[string]float64 {
	out := make(map[string]float64, len(candidates))
	if len(candidates) == 0 {
		return out
	}

	lo, hi := candidates[0].Score, candidates[0].Score
	for _, c := range candidates[1:] {
		lo = min(lo, c.Score)
		hi = max(hi, c.Score)
	}

	span := hi - lo
	for _, c := range candidates {
		switch {
		case span > 0:
			out[c.ItemID] = (c.Score - lo) / span
		case c.Score > 0:
			out[c.ItemID] = 1
		default:
			out[c.ItemID] = 0
		}
	}
	return out
}

// Blender merges the two engines' candidate lists into one ranking.
type Blender struct {
	weights BlendWeights
}

// NewBlender creates a blender with the given weights.
func NewBlender(weights BlendWeights) *Blender {
	return &Blender{weights: weights}
}

// Blend normalizes both lists, takes the union of their items, scores each as
// the weighted sum of its normalized scores (missing counts as 0), and returns
// the top k by score, ties broken by item ID.
//
// Attribution follows list membership, not the normalized score: an item in
// both lists is hybrid, otherwise it keeps the attribution of the one engine
// that proposed it.
func (b *Blender) Blend(content, collab []models.ScoredCandidate, k int) []models.ScoredCandidate {
	if k <= 0 {
		return []models.ScoredCandidate{}
	}

	cs := NormalizeScores(content)
	fs := NormalizeScores(collab)

	seen := make(map[string]struct{}, len(cs)+len(fs))
	out := make([]models.ScoredCandidate, 0, len(cs)+len(fs))
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}

		c, inContent := cs[id]
		f, inCollab := fs[id]
		out = append(out, models.ScoredCandidate{
			ItemID:      id,
			Score:       b.weights.Content*c + b.weights.Collaborative*f,
			Attribution: attribute(inContent, inCollab),
		})
	}
	for _, c := range content {
		add(c.ItemID)
	}
	for _, c := range collab {
		add(c.ItemID)
	}

	slices.SortFunc(out, func(a, b models.ScoredCandidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func attribute(inContent, inCollab bool) models.Attribution {
	switch {
	case inContent && inCollab:
		return models.AttributionHybrid
	case inContent:
		return models.AttributionContent
	default:
		return models.AttributionCollaborative
	}
}
