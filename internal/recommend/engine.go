// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marketlens/internal/metrics"
	"github.com/tomtom215/marketlens/internal/models"
)

// Store is the persistence the engine writes snapshots to and reads item
// details from. It is implemented by the store package.
type Store interface {
	SaveRecommendationSnapshot(ctx context.Context, snap *models.RecommendationSnapshot) error
	GetItemDetails(ctx context.Context, itemIDs []string) (map[string]models.ItemDetails, error)
}

// Engine coordinates the content and collaborative engines and produces
// blended recommendations. It is safe for concurrent use.
type Engine struct {
	config  *Config
	logger  zerolog.Logger
	content Algorithm
	collab  Algorithm
	blender *Blender
	store   Store

	// trainMu is held for the duration of a training cycle.
	trainMu sync.Mutex

	statusMu    sync.RWMutex
	trainStatus TrainingStatus
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, content, collab Algorithm, store Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if content == nil || collab == nil {
		return nil, errors.New("both content and collaborative algorithms are required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}

	return &Engine{
		config:  cfg.Clone(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		content: content,
		collab:  collab,
		blender: NewBlender(cfg.Weights),
		store:   store,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Train trains both engines concurrently. Each engine keeps its previous
// model if its own training fails; the returned error joins both failures.
// Returns ErrTrainingInProgress immediately if a cycle is already running.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	start := time.Now()
	e.setTraining(true)
	e.logger.Info().Msg("starting model training")

	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	algorithms := []Algorithm{e.content, e.collab}
	errs := make([]error, len(algorithms))

	// A plain Group: one engine failing must not cancel the other.
	var g errgroup.Group
	for i, alg := range algorithms {
		g.Go(func() error {
			algStart := time.Now()
			err := alg.Train(trainCtx)
			metrics.RecordTraining(alg.Name(), time.Since(algStart), int64(alg.Version()), err)
			if err != nil {
				e.logger.Error().
					Str("algorithm", alg.Name()).
					Err(err).
					Msg("algorithm training failed")
				errs[i] = fmt.Errorf("%s: %w", alg.Name(), err)
				return errs[i]
			}
			e.logger.Debug().
				Str("algorithm", alg.Name()).
				Int("version", alg.Version()).
				Msg("algorithm training complete")
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	duration := time.Since(start)
	version := e.finishTraining(duration, err)
	metrics.RecordTraining("hybrid", duration, int64(version), err)

	if err != nil {
		return err
	}
	e.logger.Info().
		Int("version", version).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("model training complete")
	return nil
}

func (e *Engine) setTraining(v bool) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.trainStatus.IsTraining = v
}

func (e *Engine) finishTraining(duration time.Duration, err error) int {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.trainStatus.IsTraining = false
	e.trainStatus.LastTrainingDurationMS = duration.Milliseconds()
	if err != nil {
		e.trainStatus.LastError = err.Error()
		return e.trainStatus.ModelVersion
	}
	e.trainStatus.LastError = ""
	e.trainStatus.ModelVersion++
	e.trainStatus.LastTrainedAt = time.Now()
	return e.trainStatus.ModelVersion
}

// Status returns the current training status.
func (e *Engine) Status() TrainingStatus {
	e.statusMu.RLock()
	status := e.trainStatus
	e.statusMu.RUnlock()

	status.Algorithms = make([]AlgorithmStatus, 0, 2)
	status.Trained = true
	for _, alg := range []Algorithm{e.content, e.collab} {
		trained := alg.IsTrained()
		status.Trained = status.Trained && trained
		status.Algorithms = append(status.Algorithms, AlgorithmStatus{
			Name:          alg.Name(),
			Trained:       trained,
			Version:       alg.Version(),
			LastTrainedAt: alg.LastTrainedAt(),
		})
	}
	return status
}

// Recommend returns up to k blended recommendations without persisting them.
// A non-positive k uses the configured default; k is capped at MaxK.
func (e *Engine) Recommend(ctx context.Context, userID string, k int) (recs []models.ScoredCandidate, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRecommendation(time.Since(start), len(recs), err)
	}()

	k = e.config.ClampK(k)
	n := k * e.config.Limits.CandidateMultiplier

	var content, collab []models.ScoredCandidate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		content, err = e.content.Recommend(gctx, userID, n)
		if err != nil {
			return fmt.Errorf("content: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		collab, err = e.collab.Recommend(gctx, userID, n)
		if err != nil {
			return fmt.Errorf("collaborative: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recs = e.blender.Blend(content, collab, k)
	for _, r := range recs {
		metrics.RecordAttribution(string(r.Attribution))
	}

	e.logger.Debug().
		Str("user_id", userID).
		Int("content_candidates", len(content)).
		Int("collaborative_candidates", len(collab)).
		Int("returned", len(recs)).
		Msg("recommendation complete")
	return recs, nil
}

// Generate computes recommendations and stores them as the user's snapshot.
// The snapshot is written even when the list is empty so that it always
// reflects the latest completed request.
func (e *Engine) Generate(ctx context.Context, userID string, k int) (*models.RecommendationSnapshot, error) {
	recs, err := e.Recommend(ctx, userID, k)
	if err != nil {
		return nil, err
	}

	snap := &models.RecommendationSnapshot{
		UserID:      userID,
		Items:       recs,
		GeneratedAt: time.Now().UTC(),
	}
	if err := e.store.SaveRecommendationSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

// Formatted generates recommendations and joins them with catalog details.
// Items without details are left out.
func (e *Engine) Formatted(ctx context.Context, userID string, k int) (*models.RecommendationOutput, error) {
	snap, err := e.Generate(ctx, userID, k)
	if err != nil {
		return nil, err
	}

	out := &models.RecommendationOutput{
		UserID:              userID,
		RecommendedProducts: make([]models.RecommendedProduct, 0, len(snap.Items)),
	}
	if len(snap.Items) == 0 {
		return out, nil
	}

	ids := make([]string, len(snap.Items))
	for i, c := range snap.Items {
		ids[i] = c.ItemID
	}
	details, err := e.store.GetItemDetails(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get item details: %w", err)
	}

	for _, c := range snap.Items {
		d, ok := details[c.ItemID]
		if !ok {
			e.logger.Warn().
				Str("user_id", userID).
				Str("item_id", c.ItemID).
				Msg("recommended item has no catalog details")
			continue
		}
		out.RecommendedProducts = append(out.RecommendedProducts, models.RecommendedProduct{
			ItemID:   c.ItemID,
			Name:     d.Name,
			Score:    c.Score,
			Category: d.Category,
			Price:    d.Price,
			Reason:   c.Attribution.Reason(),
		})
	}
	return out, nil
}
