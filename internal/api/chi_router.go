// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marketlens/internal/middleware"
)

// Budget for the endpoints that run a full training or evaluation pass.
const (
	expensiveRateLimitRequests = 10
	expensiveRateLimitWindow   = time.Minute
)

// compressionLevel is the gzip/deflate level for JSON responses.
const compressionLevel = 5

// NewRouter builds the HTTP handler.
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered
	r.Use(chimiddleware.Compress(compressionLevel, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Health probes are outside the rate limit.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(APISecurityHeaders)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders)
		r.Use(middleware.PrometheusMetrics)
		if h.perf != nil {
			r.Use(h.perf.Middleware)
		}

		r.Get("/", h.Root)
		r.Get("/users", h.Users)
		r.Get("/recommendation-status", h.RecommendationStatus)
		r.Post("/generate-recommendations/{userID}", h.GenerateRecommendations)
		r.Get("/recommendations/{userID}", h.Recommendations)
		r.Get("/recommendations/{userID}/snapshot", h.RecommendationSnapshot)
		r.Post("/activity", h.RecordActivity)

		r.Post("/start-streaming", h.StartStreaming)
		r.Post("/stop-streaming", h.StopStreaming)
		r.Get("/streaming/status", h.StreamingStatus)

		r.Get("/training/status", h.TrainingStatus)
		r.Get("/performance", h.Performance)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitCustom(expensiveRateLimitRequests, expensiveRateLimitWindow))
			r.Post("/train", h.Train)
			r.Get("/evaluate", h.Evaluate)
		})
	})

	return r
}
