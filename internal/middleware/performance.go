// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package middleware

import (
	"cmp"
	"net/http"
	"slices"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/marketlens/internal/logging"
)

// RequestMetrics is one observed request.
type RequestMetrics struct {
	Route      string
	Method     string
	DurationMS float64
	StatusCode int
	Timestamp  time.Time
}

// EndpointStats contains aggregated statistics for an endpoint over the
// monitor's window.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int     `json:"request_count"`
	ErrorCount   int     `json:"error_count"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	P50Duration  float64 `json:"p50_duration_ms"`
	P95Duration  float64 `json:"p95_duration_ms"`
	P99Duration  float64 `json:"p99_duration_ms"`
	MaxDuration  float64 `json:"max_duration_ms"`
}

// PerformanceMonitor keeps the last maxMetrics requests in a ring buffer and
// summarizes them per endpoint.
type PerformanceMonitor struct {
	mu         sync.RWMutex
	metrics    []RequestMetrics
	next       int
	full       bool
	slowAfter  time.Duration
	totalCount int64
}

// NewPerformanceMonitor creates a monitor holding up to maxMetrics requests.
// Requests slower than slowAfter are logged at warn level; 0 disables that.
func NewPerformanceMonitor(maxMetrics int, slowAfter time.Duration) *PerformanceMonitor {
	if maxMetrics < 1 {
		maxMetrics = 1000
	}
	return &PerformanceMonitor{
		metrics:   make([]RequestMetrics, maxMetrics),
		slowAfter: slowAfter,
	}
}

// RecordRequest adds a request metric, evicting the oldest when full.
func (pm *PerformanceMonitor) RecordRequest(m *RequestMetrics) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.metrics[pm.next] = *m
	pm.next = (pm.next + 1) % len(pm.metrics)
	if pm.next == 0 {
		pm.full = true
	}
	pm.totalCount++
}

// window returns the buffered metrics. Callers hold at least the read lock.
func (pm *PerformanceMonitor) window() []RequestMetrics {
	if pm.full {
		return pm.metrics
	}
	return pm.metrics[:pm.next]
}

// TotalRequests returns the number of requests ever recorded.
func (pm *PerformanceMonitor) TotalRequests() int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.totalCount
}

// GetStats returns per-endpoint statistics, busiest endpoint first.
func (pm *PerformanceMonitor) GetStats() []EndpointStats {
	pm.mu.RLock()
	durations := make(map[string][]float64)
	errors := make(map[string]int)
	for _, m := range pm.window() {
		key := m.Method + " " + m.Route
		durations[key] = append(durations[key], m.DurationMS)
		if m.StatusCode >= http.StatusInternalServerError {
			errors[key]++
		}
	}
	pm.mu.RUnlock()

	stats := make([]EndpointStats, 0, len(durations))
	for endpoint, ds := range durations {
		slices.Sort(ds)
		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: len(ds),
			ErrorCount:   errors[endpoint],
			AvgDuration:  stat.Mean(ds, nil),
			P50Duration:  stat.Quantile(0.50, stat.Empirical, ds, nil),
			P95Duration:  stat.Quantile(0.95, stat.Empirical, ds, nil),
			P99Duration:  stat.Quantile(0.99, stat.Empirical, ds, nil),
			MaxDuration:  ds[len(ds)-1],
		})
	}

	slices.SortFunc(stats, func(a, b EndpointStats) int {
		if c := cmp.Compare(b.RequestCount, a.RequestCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Endpoint, b.Endpoint)
	})
	return stats
}

// Middleware records every request that passes through it.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := RoutePattern(r)
		pm.RecordRequest(&RequestMetrics{
			Route:      route,
			Method:     r.Method,
			DurationMS: float64(elapsed.Microseconds()) / 1000,
			StatusCode: statusOf(ww),
			Timestamp:  start,
		})

		if pm.slowAfter > 0 && elapsed > pm.slowAfter {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Dur("duration", elapsed).
				Msg("Slow request detected")
		}
	})
}
