// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

// Package evaluation measures recommendation quality against held-out
// interactions.
//
// For every qualifying user the most recently touched distinct items are
// held out. Exact precision@k counts recommended items that are in the
// holdout; category precision@k counts recommended items whose category
// appears among the holdout items' categories.
package evaluation

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/marketlens/internal/models"
)

// Recommender produces ranked candidates for a user.
type Recommender interface {
	Recommend(ctx context.Context, userID string, k int) ([]models.ScoredCandidate, error)
}

// DetailSource resolves item IDs to catalog details.
type DetailSource interface {
	GetItemDetails(ctx context.Context, itemIDs []string) (map[string]models.ItemDetails, error)
}

// ActivitySource lists users and their interactions.
type ActivitySource interface {
	GetUserIDs(ctx context.Context) ([]string, error)
	GetInteractions(ctx context.Context, userID string) ([]models.Interaction, error)
}

// Source is everything Run needs from the store.
type Source interface {
	ActivitySource
	DetailSource
}

// DefaultKs are the cutoffs reported by Run.
var DefaultKs = []int{5, 10, 20}

// minCandidates is the smallest list requested from the recommender.
const minCandidates = 20

// HoldoutOptions controls which users are evaluated and how much is held out.
type HoldoutOptions struct {
	// TestSize is the fraction of a user's distinct items held out (at least one).
	TestSize float64

	// Action restricts the interactions considered. Empty means all actions.
	Action models.Action

	// MinActivities is the minimum number of interactions a user needs.
	MinActivities int

	// MinDistinctItems is the minimum number of distinct items a user needs.
	MinDistinctItems int
}

// DefaultHoldoutOptions returns the standard holdout settings.
func DefaultHoldoutOptions() HoldoutOptions {
	return HoldoutOptions{TestSize: 0.2, MinActivities: 10, MinDistinctItems: 5}
}

// Result is the averaged precision over all evaluated users.
type Result struct {
	K                 int     `json:"k"`
	ExactPrecision    float64 `json:"exact_precision"`
	CategoryPrecision float64 `json:"category_precision"`
	Users             int     `json:"num_users"`
}

// PrecisionAtK returns the fraction of the first k predictions found in actual.
func PrecisionAtK(actual, predicted []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	want := make(map[string]struct{}, len(actual))
	for _, id := range actual {
		want[id] = struct{}{}
	}

	hits := 0
	for _, id := range predicted[:min(k, len(predicted))] {
		if _, ok := want[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// CategoryPrecisionAtK returns the fraction of the first k predictions whose
// category matches the category of any actual item. Items without details
// never match.
func CategoryPrecisionAtK(actual, predicted []string, k int, details map[string]models.ItemDetails) float64 {
	if k <= 0 {
		return 0
	}
	categories := make(map[string]struct{})
	for _, id := range actual {
		if d, ok := details[id]; ok && d.Category != "" {
			categories[d.Category] = struct{}{}
		}
	}

	hits := 0
	for _, id := range predicted[:min(k, len(predicted))] {
		d, ok := details[id]
		if !ok || d.Category == "" {
			continue
		}
		if _, match := categories[d.Category]; match {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// SplitHoldout returns, per qualifying user, the item IDs of their most
// recently touched distinct items.
func SplitHoldout(ctx context.Context, src ActivitySource, opts HoldoutOptions) (map[string][]string, error) {
	users, err := src.GetUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	holdout := make(map[string][]string)
	for _, user := range users {
		ins, err := src.GetInteractions(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("get interactions for %s: %w", user, err)
		}
		if ids := holdoutItems(ins, opts); len(ids) > 0 {
			holdout[user] = ids
		}
	}
	return holdout, nil
}

func holdoutItems(ins []models.Interaction, opts HoldoutOptions) []string {
	if opts.Action != "" {
		ins = slices.DeleteFunc(slices.Clone(ins), func(in models.Interaction) bool {
			return in.Action != opts.Action
		})
	}
	if len(ins) < opts.MinActivities {
		return nil
	}

	latest := make(map[string]models.Interaction)
	for _, in := range ins {
		if prev, ok := latest[in.ItemID]; !ok || in.Timestamp.After(prev.Timestamp) {
			latest[in.ItemID] = in
		}
	}
	if len(latest) < opts.MinDistinctItems || len(latest) == 0 {
		return nil
	}

	distinct := make([]models.Interaction, 0, len(latest))
	for _, in := range latest {
		distinct = append(distinct, in)
	}
	slices.SortFunc(distinct, func(a, b models.Interaction) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})

	n := max(1, int(float64(len(distinct))*opts.TestSize))
	ids := make([]string, 0, n)
	for _, in := range distinct[len(distinct)-n:] {
		ids = append(ids, in.ItemID)
	}
	return ids
}

// Evaluate averages exact and category precision@k over the holdout users.
func Evaluate(ctx context.Context, rec Recommender, details DetailSource, holdout map[string][]string, k int) (Result, error) {
	result := Result{K: k, Users: len(holdout)}
	if len(holdout) == 0 {
		return result, nil
	}

	users := make([]string, 0, len(holdout))
	for u := range holdout {
		users = append(users, u)
	}
	slices.Sort(users)

	exact := make([]float64, 0, len(users))
	category := make([]float64, 0, len(users))
	for _, user := range users {
		recs, err := rec.Recommend(ctx, user, max(k, minCandidates))
		if err != nil {
			return Result{}, fmt.Errorf("recommend for %s: %w", user, err)
		}
		predicted := make([]string, len(recs))
		for i, r := range recs {
			predicted[i] = r.ItemID
		}

		actual := holdout[user]
		ids := append(slices.Clone(actual), predicted[:min(k, len(predicted))]...)
		det, err := details.GetItemDetails(ctx, ids)
		if err != nil {
			return Result{}, fmt.Errorf("get item details: %w", err)
		}

		exact = append(exact, PrecisionAtK(actual, predicted, k))
		category = append(category, CategoryPrecisionAtK(actual, predicted, k, det))
	}

	result.ExactPrecision = stat.Mean(exact, nil)
	result.CategoryPrecision = stat.Mean(category, nil)
	return result, nil
}

// Run builds the holdout once and evaluates it at each cutoff in ks
// (DefaultKs when empty).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Run(ctx context.Context, rec Recommender, src Source, opts HoldoutOptions, ks []int, logger zerolog.Logger) ([]Result, error) {
	if len(ks) == 0 {
		ks = DefaultKs
	}

	holdout, err := SplitHoldout(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("users", len(holdout)).Msg("created holdout set")

	results := make([]Result, 0, len(ks))
	for _, k := range ks {
		r, err := Evaluate(ctx, rec, src, holdout, k)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Int("k", k).
			Float64("exact_precision", r.ExactPrecision).
			Float64("category_precision", r.CategoryPrecision).
			Msg("evaluation result")
		results = append(results, r)
	}
	return results, nil
}
