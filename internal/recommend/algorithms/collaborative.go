// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/recommend"
)

// InteractionSource is the data needed by Collaborative.
type InteractionSource interface {
	GetUserIDs(ctx context.Context) ([]string, error)
	GetInteractions(ctx context.Context, userID string) ([]models.Interaction, error)
}

// CollaborativeConfig contains configuration for matrix factorization.
type CollaborativeConfig struct {
	// Factors is the requested number of latent factors. The effective rank
	// is capped at min(users, items) - 1.
	Factors int

	// PurchaseWeight is the matrix value of one purchase.
	PurchaseWeight float64

	// ViewWeight is the matrix value of one view.
	ViewWeight float64

	// MaxScore divides predicted affinities before clamping to [0, 1].
	MaxScore float64
}

// DefaultCollaborativeConfig returns the standard configuration.
func DefaultCollaborativeConfig() CollaborativeConfig {
	return CollaborativeConfig{Factors: 20, PurchaseWeight: 5.0, ViewWeight: 1.0, MaxScore: 5.0}
}

// InteractionMatrix is a dense user×item matrix with sorted index maps.
type InteractionMatrix struct {
	Users     []string
	Items     []string
	UserIndex map[string]int
	ItemIndex map[string]int
	Values    *mat.Dense
}

// BuildInteractionMatrix assigns sorted row/column indices and sums the
// action weights per (user, item). Returns nil when there are no interactions.
func BuildInteractionMatrix(byUser map[string][]models.Interaction, purchaseWeight, viewWeight float64) *InteractionMatrix {
	userSet := make(map[string]struct{}, len(byUser))
	itemSet := make(map[string]struct{})
	for user, ins := range byUser {
		for i := range ins {
			userSet[user] = struct{}{}
			itemSet[ins[i].ItemID] = struct{}{}
		}
	}
	if len(userSet) == 0 || len(itemSet) == 0 {
		return nil
	}

	m := &InteractionMatrix{
		Users:     sortedKeys(userSet),
		Items:     sortedKeys(itemSet),
		UserIndex: make(map[string]int, len(userSet)),
		ItemIndex: make(map[string]int, len(itemSet)),
	}
	for i, u := range m.Users {
		m.UserIndex[u] = i
	}
	for j, it := range m.Items {
		m.ItemIndex[it] = j
	}

	m.Values = mat.NewDense(len(m.Users), len(m.Items), nil)
	for user, ins := range byUser {
		r, ok := m.UserIndex[user]
		if !ok {
			continue
		}
		for i := range ins {
			w := viewWeight
			if ins[i].Action == models.ActionPurchase {
				w = purchaseWeight
			}
			c := m.ItemIndex[ins[i].ItemID]
			m.Values.Set(r, c, m.Values.At(r, c)+w)
		}
	}
	return m
}

// centered returns a copy of the matrix with the mean of the nonzero entries
// subtracted from those entries only. Zero (unknown) cells stay zero.
func (m *InteractionMatrix) centered() (*mat.Dense, float64) {
	raw := m.Values.RawMatrix()

	var sum float64
	var n int
	for _, v := range raw.Data {
		if v != 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return mat.DenseCopyOf(m.Values), 0
	}
	mean := sum / float64(n)

	out := mat.DenseCopyOf(m.Values)
	out.Apply(func(_, _ int, v float64) float64 {
		if v == 0 {
			return 0
		}
		return v - mean
	}, out)
	return out, mean
}

// collabModel is the trained state swapped in atomically.
type collabModel struct {
	matrix      *InteractionMatrix
	mean        float64
	userFactors *mat.Dense // users × k, singular values folded in
	itemFactors *mat.Dense // items × k
	rank        int
}

// Collaborative recommends items by reconstructing the mean-centered
// interaction matrix from its truncated singular value decomposition.
//
// The singular values are folded into the user factors so that
// mean + dot(userFactors[u], itemFactors[i]) is the rank-k reconstruction of
// the (u, i) cell.
type Collaborative struct {
	BaseAlgorithm

	cfg    CollaborativeConfig
	source InteractionSource
	model  *collabModel
}

// NewCollaborative creates a factorization algorithm reading from source.
func NewCollaborative(source InteractionSource, cfg CollaborativeConfig) *Collaborative {
	def := DefaultCollaborativeConfig()
	if cfg.Factors <= 0 {
		cfg.Factors = def.Factors
	}
	if cfg.PurchaseWeight <= 0 {
		cfg.PurchaseWeight = def.PurchaseWeight
	}
	if cfg.ViewWeight <= 0 {
		cfg.ViewWeight = def.ViewWeight
	}
	if cfg.MaxScore <= 0 {
		cfg.MaxScore = def.MaxScore
	}

	return &Collaborative{
		BaseAlgorithm: NewBaseAlgorithm("collaborative"),
		cfg:           cfg,
		source:        source,
	}
}

// Train pulls every user's history, builds the matrix, and factorizes it.
func (c *Collaborative) Train(ctx context.Context) error {
	if err := c.beginTraining(); err != nil {
		return err
	}
	defer c.endTraining()

	users, err := c.source.GetUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if len(users) == 0 {
		return fmt.Errorf("no users: %w", recommend.ErrInsufficientData)
	}

	byUser := make(map[string][]models.Interaction, len(users))
	for _, u := range users {
		if ContextCancelled(ctx) {
			return ctx.Err()
		}
		ins, err := c.source.GetInteractions(ctx, u)
		if err != nil {
			return fmt.Errorf("load interactions for %s: %w", u, err)
		}
		if len(ins) > 0 {
			byUser[u] = ins
		}
	}

	matrix := BuildInteractionMatrix(byUser, c.cfg.PurchaseWeight, c.cfg.ViewWeight)
	if matrix == nil {
		return fmt.Errorf("no interactions: %w", recommend.ErrInsufficientData)
	}

	model, err := c.factorize(matrix)
	if err != nil {
		return err
	}

	c.commit(func() { c.model = model })
	return nil
}

func (c *Collaborative) factorize(matrix *InteractionMatrix) (*collabModel, error) {
	nUsers, nItems := matrix.Values.Dims()
	k := min(c.cfg.Factors, min(nUsers, nItems)-1)
	if k < 1 {
		return nil, fmt.Errorf("rank %d for %dx%d matrix: %w", k, nUsers, nItems, recommend.ErrInsufficientData)
	}

	centered, mean := matrix.centered()

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, errors.New("svd factorization failed")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := svd.Values(nil)

	userFactors := mat.DenseCopyOf(u.Slice(0, nUsers, 0, k))
	userFactors.Apply(func(_, j int, x float64) float64 {
		return x * sigma[j]
	}, userFactors)
	itemFactors := mat.DenseCopyOf(v.Slice(0, nItems, 0, k))

	return &collabModel{
		matrix:      matrix,
		mean:        mean,
		userFactors: userFactors,
		itemFactors: itemFactors,
		rank:        k,
	}, nil
}

// Rank returns the number of latent factors of the served model.
func (c *Collaborative) Rank() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.model == nil {
		return 0
	}
	return c.model.rank
}

// Predict returns the reconstructed raw affinity of a (user, item) pair.
// ok is false when either is unknown to the served model.
func (c *Collaborative) Predict(userID, itemID string) (score float64, ok bool) {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()
	if model == nil {
		return 0, false
	}

	r, okU := model.matrix.UserIndex[userID]
	j, okI := model.matrix.ItemIndex[itemID]
	if !okU || !okI {
		return 0, false
	}
	return model.mean + floats.Dot(model.userFactors.RawRowView(r), model.itemFactors.RawRowView(j)), true
}

// Recommend returns up to k items the user has not interacted with, ranked
// by reconstructed affinity.
func (c *Collaborative) Recommend(_ context.Context, userID string, k int) ([]models.ScoredCandidate, error) {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()

	if model == nil || k <= 0 {
		return []models.ScoredCandidate{}, nil
	}
	r, ok := model.matrix.UserIndex[userID]
	if !ok {
		return []models.ScoredCandidate{}, nil
	}

	userRow := model.userFactors.RawRowView(r)
	seen := model.matrix.Values.RawRowView(r)

	candidates := make([]scored, 0, len(model.matrix.Items))
	for j, itemID := range model.matrix.Items {
		if seen[j] > 0 {
			continue
		}
		pred := model.mean + floats.Dot(userRow, model.itemFactors.RawRowView(j))
		candidates = append(candidates, scored{index: j, id: itemID, score: pred})
	}
	if len(candidates) == 0 {
		return []models.ScoredCandidate{}, nil
	}

	maxScore := c.cfg.MaxScore
	return toCandidates(topK(candidates, k), models.AttributionCollaborative, func(s float64) float64 {
		return clamp01(s / maxScore)
	}), nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
