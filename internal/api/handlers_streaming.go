// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/replay"
)

// StartStreaming handles POST /api/v1/start-streaming?speed_factor=100
// Starts replaying the activity log at speed_factor times real time.
func (h *Handler) StartStreaming(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	speed, err := getIntParam(r, "speed_factor", h.config.DefaultSpeed)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&streamingParams{SpeedFactor: speed}); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.replayer.Start(r.Context(), speed); err != nil {
		switch {
		case errors.Is(err, replay.ErrAlreadyStreaming):
			respondError(w, http.StatusConflict, ErrCodeStreaming, "Streaming is already running", nil)
		case errors.Is(err, replay.ErrInvalidSpeed):
			respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		case errors.Is(err, replay.ErrNoEvents):
			respondError(w, http.StatusNotFound, ErrCodeNotFound, "No activity events to replay", nil)
		default:
			respondError(w, http.StatusInternalServerError, ErrCodeStreaming, "Failed to start streaming", err)
		}
		return
	}

	respondSuccess(w, map[string]interface{}{
		"message": fmt.Sprintf("Streaming started with speed factor %dx", speed),
		"status":  h.replayer.Status(),
	}, start)
}

// StopStreaming handles POST /api/v1/stop-streaming
// Stops a running replay. When the loop does not exit within the stop
// timeout the request is accepted and the replay finishes shortly after.
func (h *Handler) StopStreaming(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	err := h.replayer.Stop()
	switch {
	case err == nil:
		respondSuccess(w, map[string]interface{}{
			"message": "Streaming stopped",
			"status":  h.replayer.Status(),
		}, start)
	case errors.Is(err, replay.ErrNotStreaming):
		respondError(w, http.StatusConflict, ErrCodeStreaming, "Streaming is not running", nil)
	case errors.Is(err, replay.ErrStopTimeout):
		respondJSON(w, http.StatusAccepted, &models.APIResponse{
			Status: "success",
			Data: map[string]interface{}{
				"message": "Stop requested; the in-flight write is still completing",
				"status":  h.replayer.Status(),
			},
			Metadata: models.Metadata{
				Timestamp:   time.Now().UTC(),
				QueryTimeMS: time.Since(start).Milliseconds(),
			},
		})
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeStreaming, "Failed to stop streaming", err)
	}
}

// StreamingStatus handles GET /api/v1/streaming/status
func (h *Handler) StreamingStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, h.replayer.Status(), time.Now())
}
