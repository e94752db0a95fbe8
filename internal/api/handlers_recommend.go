// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marketlens/internal/evaluation"
	"github.com/tomtom215/marketlens/internal/logging"
	"github.com/tomtom215/marketlens/internal/recommend"
	"github.com/tomtom215/marketlens/internal/store"
)

const (
	// maxListedUsers caps the user list returned by Users.
	maxListedUsers = 50

	// maxSampleUsers caps the sample returned by RecommendationStatus.
	maxSampleUsers = 5
)

// Root handles GET /api/v1/
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"message": "Marketlens recommendation API is running",
	}, time.Now())
}

// Users handles GET /api/v1/users
// Returns the number of users with activity and the first 50 of them.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	users, err := h.store.GetUserIDs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to list users", err)
		return
	}

	listed := users
	if len(listed) > maxListedUsers {
		listed = listed[:maxListedUsers]
	}
	respondSuccess(w, map[string]interface{}{
		"count": len(users),
		"users": nonNil(listed),
	}, start)
}

// RecommendationStatus handles GET /api/v1/recommendation-status
func (h *Handler) RecommendationStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	users, err := h.store.ListSnapshotUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to list recommendation snapshots", err)
		return
	}

	sample := users
	if len(sample) > maxSampleUsers {
		sample = sample[:maxSampleUsers]
	}
	respondSuccess(w, map[string]interface{}{
		"users_with_recommendations": len(users),
		"sample_users":               nonNil(sample),
	}, start)
}

// GenerateRecommendations handles POST /api/v1/generate-recommendations/{userID}
// Computes and stores a fresh snapshot for a user with activity.
func (h *Handler) GenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}
	k, ok := h.limitParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	activities, err := h.store.GetInteractions(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to read user activity", err)
		return
	}
	if len(activities) == 0 {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("User %s has no activity data", userID), nil)
		return
	}

	snap, err := h.engine.Generate(ctx, userID, k)
	if err != nil {
		h.recommendationFailed(w, r, userID, err)
		return
	}

	message := "Recommendations generated successfully"
	if len(snap.Items) == 0 {
		message = "No recommendations could be generated"
	}
	respondSuccess(w, map[string]interface{}{
		"user_id":                   userID,
		"activities_count":          len(activities),
		"recommendations_generated": len(snap.Items),
		"generated_at":              snap.GeneratedAt,
		"message":                   message,
	}, start)
}

// Recommendations handles GET /api/v1/recommendations/{userID}?limit=10
// Returns formatted recommendations and stores them as the user's snapshot.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}
	k, ok := h.limitParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	out, err := h.engine.Formatted(ctx, userID, k)
	if err != nil {
		h.recommendationFailed(w, r, userID, err)
		return
	}
	if len(out.RecommendedProducts) == 0 {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("No recommendations found for user %s", userID), nil)
		return
	}

	respondSuccess(w, out, start)
}

// RecommendationSnapshot handles GET /api/v1/recommendations/{userID}/snapshot
// Returns the last stored result without recomputing it.
func (h *Handler) RecommendationSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	snap, err := h.store.GetRecommendationSnapshot(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("No stored recommendations for user %s", userID), nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to read recommendation snapshot", err)
		return
	}

	respondSuccess(w, snap, start)
}

// Train handles POST /api/v1/train
// Runs one training cycle and returns the resulting status. The cycle is not
// tied to the client connection; a client that disconnects does not abort it.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	err := h.engine.Train(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		respondError(w, http.StatusConflict, ErrCodeConflict, "Training is already in progress", nil)
		return
	case errors.Is(err, recommend.ErrInsufficientData):
		respondError(w, http.StatusUnprocessableEntity, ErrCodeTraining, "Not enough catalog or activity data to train", err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, ErrCodeTraining, "Model training failed", err)
		return
	}

	respondSuccess(w, h.engine.Status(), start)
}

// TrainingStatus handles GET /api/v1/training/status
func (h *Handler) TrainingStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, h.engine.Status(), time.Now())
}

// Evaluate handles GET /api/v1/evaluate?k=5
// Measures precision@k on a holdout of each user's latest items. Without k,
// the configured cutoffs are reported.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ks := h.config.EvaluationKs
	if r.URL.Query().Has("k") {
		k, err := getIntParam(r, "k", 0)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
			return
		}
		if apiErr := validateRequest(&evaluateParams{K: k}); apiErr != nil {
			respondAPIError(w, http.StatusBadRequest, apiErr)
			return
		}
		ks = []int{k}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	results, err := evaluation.Run(ctx, h.engine, h.store, evaluation.DefaultHoldoutOptions(), ks, *logging.Ctx(ctx))
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeEvaluation, "Evaluation failed", err)
		return
	}

	respondSuccess(w, map[string]interface{}{
		"results": results,
		"trained": h.engine.Status().Trained,
	}, start)
}

// userIDParam reads and validates {userID}, writing a 400 on failure.
func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	params := userParams{UserID: chi.URLParam(r, "userID")}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return "", false
	}
	return params.UserID, true
}

// limitParam reads ?limit, defaulting to the engine's DefaultK. Values above
// MaxK are capped by the engine.
func (h *Handler) limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit, err := getIntParam(r, "limit", h.engine.Config().Limits.DefaultK)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return 0, false
	}
	if apiErr := validateRequest(&limitParams{Limit: limit}); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return 0, false
	}
	return limit, true
}

func (h *Handler) recommendationFailed(w http.ResponseWriter, r *http.Request, userID string, err error) {
	logging.Ctx(r.Context()).Error().
		Str("user_id", sanitizeLogValue(userID)).
		Err(err).
		Msg("recommendation failed")

	if errors.Is(err, store.ErrCircuitOpen) {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Storage is temporarily unavailable", nil)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Recommendation timed out", nil)
		return
	}
	respondError(w, http.StatusInternalServerError, ErrCodeRecommendation, "Failed to generate recommendations", nil)
}

// nonNil keeps empty lists serialized as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
