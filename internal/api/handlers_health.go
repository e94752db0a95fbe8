// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/marketlens/internal/middleware"
	"github.com/tomtom215/marketlens/internal/models"
)

// readinessTimeout bounds the store probe of HealthReady.
const readinessTimeout = 2 * time.Second

// HealthLive handles GET /api/v1/health/live
// Returns 200 while the process is serving HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles GET /api/v1/health/ready
// Returns 200 when the store answers, 503 otherwise. Untrained models do not
// make the service unready: recommendations are then empty, not failing.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	storeErr := h.store.Ping(ctx)
	training := h.engine.Status()

	data := map[string]interface{}{
		"store_available": storeErr == nil,
		"models_trained":  training.Trained,
		"streaming":       h.replayer.IsStreaming(),
		"uptime":          time.Since(h.startTime).Seconds(),
	}

	statusCode := http.StatusOK
	status := "ready"
	if storeErr != nil {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
		data["store_error"] = storeErr.Error()
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// Performance handles GET /api/v1/performance
// Returns per-endpoint latency percentiles over the recent request window.
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	stats := []middleware.EndpointStats{}
	var total int64
	if h.perf != nil {
		stats = h.perf.GetStats()
		total = h.perf.TotalRequests()
	}

	respondSuccess(w, map[string]interface{}{
		"endpoints":      stats,
		"total_requests": total,
	}, time.Now())
}
