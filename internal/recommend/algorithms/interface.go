// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

// Package algorithms implements the two recommendation engines blended by
// the recommend package.
//
//   - ContentBased: TF-IDF item features and cosine similarity to a weighted
//     user profile.
//   - Collaborative: mean-centered user×item matrix factorized by truncated SVD.
//
// # Thread Safety
//
// Training builds the new model without holding any lock and then swaps it in
// under the exclusive lock. Recommend holds the shared lock only long enough
// to take a reference to the current model, so requests issued during a
// retrain are served from the previous model and see the new one as soon as
// the swap completes.
package algorithms

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/recommend"
)

// BaseAlgorithm provides common functionality for all algorithms.
type BaseAlgorithm struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
	training      atomic.Bool
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{name: name}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsTrained returns whether the model has been trained.
func (b *BaseAlgorithm) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// Version returns the model version.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the model was last trained.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// beginTraining claims the training slot.
func (b *BaseAlgorithm) beginTraining() error {
	if !b.training.CompareAndSwap(false, true) {
		return recommend.ErrTrainingInProgress
	}
	return nil
}

// endTraining releases the training slot.
func (b *BaseAlgorithm) endTraining() {
	b.training.Store(false)
}

// commit runs swap under the exclusive lock and marks the model trained.
func (b *BaseAlgorithm) commit(swap func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	swap()
	b.trained = true
	b.version++
	b.lastTrainedAt = time.Now()
}

// scored is an item index with a raw score.
type scored struct {
	index int
	id    string
	score float64
}

// topK sorts candidates by score descending (ties by item ID) and keeps k.
func topK(candidates []scored, k int) []scored {
	slices.SortFunc(candidates, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// toCandidates converts ranked results using rescale for the final score.
func toCandidates(ranked []scored, attribution models.Attribution, rescale func(float64) float64) []models.ScoredCandidate {
	out := make([]models.ScoredCandidate, len(ranked))
	for i, r := range ranked {
		out[i] = models.ScoredCandidate{
			ItemID:      r.id,
			Score:       rescale(r.score),
			Attribution: attribution,
		}
	}
	return out
}

// clamp01 bounds v to [0, 1].
func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

// Ensure all algorithms implement the interface.
var (
	_ recommend.Algorithm = (*ContentBased)(nil)
	_ recommend.Algorithm = (*Collaborative)(nil)
)

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
