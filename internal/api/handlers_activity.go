// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/marketlens/internal/logging"
	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/store"
)

// RecordActivity handles POST /api/v1/activity
// Validates one interaction and appends it to the log. The timestamp
// defaults to now.
func (h *Handler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ActivityRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid request body: "+err.Error(), nil)
		return
	}
	req.normalize()
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	in, err := req.interaction(start)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	if err := h.store.InsertInteraction(r.Context(), in); err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidInteraction):
			respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		case errors.Is(err, store.ErrCircuitOpen):
			respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Storage is temporarily unavailable", err)
		default:
			respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to insert activity", err)
		}
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("user_id", in.UserID).
		Str("item_id", in.ItemID).
		Str("action", string(in.Action)).
		Msg("activity recorded")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"message":   "Activity added successfully",
			"id":        in.ID,
			"timestamp": in.Timestamp,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
