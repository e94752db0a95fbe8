// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

// Package metrics holds the Prometheus collectors for Marketlens.
//
// Collectors are registered on the default registry through promauto and
// exposed by the API on /metrics. Callers use the Record* helpers rather
// than touching collectors directly.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of blended recommendation requests",
		},
		[]string{"result"}, // "ok", "empty", "error"
	)

	RecommendationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_latency_seconds",
			Help:    "Latency of blended recommendation requests",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RecommendationResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_result_size",
			Help:    "Number of items returned per recommendation request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	RecommendationAttributions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_attributions_total",
			Help: "Recommended items by contributing engine",
		},
		[]string{"attribution"},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_runs_total",
			Help: "Total number of training runs per algorithm",
		},
		[]string{"algorithm", "result"},
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Training duration per algorithm",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"algorithm"},
	)

	ModelVersion = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_model_version",
			Help: "Version counter of the currently served model per algorithm",
		},
		[]string{"algorithm"},
	)

	// Replay Metrics
	ReplayEventsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "replay_events_written_total",
			Help: "Interactions written by the replayer",
		},
	)

	ReplayWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "replay_write_failures_total",
			Help: "Interactions the replayer failed to write",
		},
	)

	ReplayStreaming = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "replay_streaming",
			Help: "1 while a replay is streaming, 0 otherwise",
		},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of store operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"operation"},
	)

	DetailsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "item_details_cache_lookups_total",
			Help: "Item details lookups served by the cache (hit) or the store (miss)",
		},
		[]string{"result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records the outcome of one blended request.
func RecordRecommendation(duration time.Duration, size int, err error) {
	RecommendationLatency.Observe(duration.Seconds())
	switch {
	case err != nil:
		RecommendationRequests.WithLabelValues("error").Inc()
		return
	case size == 0:
		RecommendationRequests.WithLabelValues("empty").Inc()
	default:
		RecommendationRequests.WithLabelValues("ok").Inc()
	}
	RecommendationResultSize.Observe(float64(size))
}

// RecordAttribution counts one recommended item for the given attribution.
func RecordAttribution(attribution string) {
	RecommendationAttributions.WithLabelValues(attribution).Inc()
}

// RecordTraining records one training run of an algorithm.
func RecordTraining(algorithm string, duration time.Duration, version int64, err error) {
	TrainingDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	if err != nil {
		TrainingRuns.WithLabelValues(algorithm, "failure").Inc()
		return
	}
	TrainingRuns.WithLabelValues(algorithm, "success").Inc()
	ModelVersion.WithLabelValues(algorithm).Set(float64(version))
}

// RecordReplayWrite records the outcome of one replayed interaction.
func RecordReplayWrite(err error) {
	if err != nil {
		ReplayWriteFailures.Inc()
		return
	}
	ReplayEventsWritten.Inc()
}

// SetReplayStreaming sets the streaming gauge.
func SetReplayStreaming(streaming bool) {
	if streaming {
		ReplayStreaming.Set(1)
		return
	}
	ReplayStreaming.Set(0)
}

// RecordStoreOperation records a store operation.
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordDetailsCache records item details cache hits and misses.
func RecordDetailsCache(hits, misses int) {
	if hits > 0 {
		DetailsCacheLookups.WithLabelValues("hit").Add(float64(hits))
	}
	if misses > 0 {
		DetailsCacheLookups.WithLabelValues("miss").Add(float64(misses))
	}
}

// RecordCircuitBreakerRequest records a call through a breaker. Rejections
// (open or too many half-open requests) are counted separately from failures.
func RecordCircuitBreakerRequest(name string, err error, rejected func(error) bool) {
	switch {
	case err == nil:
		CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	case rejected != nil && rejected(err):
		CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	default:
		CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	}
}

// RecordCircuitBreakerTransition records a state change; state values are
// 0=closed, 1=half-open, 2=open.
func RecordCircuitBreakerTransition(name, from, to string, state int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// SetAppInfo publishes the build version.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// statusLabel formats an HTTP status code for labels.
func statusLabel(code int) string {
	return strconv.Itoa(code)
}

// RecordHTTPStatus is a convenience wrapper used by middleware that only has
// an int status code.
func RecordHTTPStatus(method, endpoint string, code int, duration time.Duration) {
	RecordAPIRequest(method, endpoint, statusLabel(code), duration)
}
