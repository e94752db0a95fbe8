// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

/*
Package middleware provides chi-compatible HTTP middleware for request
tracing, Prometheus instrumentation and in-process latency statistics.

Key Components:

  - RequestID: request and correlation IDs in headers and context
  - PrometheusMetrics: request counts, durations and in-flight gauge,
    labelled by chi route pattern
  - PerformanceMonitor: sliding-window per-endpoint percentiles (gonum/stat)
    with slow-request logging

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Use(perfMon.Middleware)
	    r.Get("/recommendations/{userID}", h.Recommendations)
	})

Route patterns are only known after chi has routed the request, so the
instrumenting middleware reads them once the inner handler has returned.
*/
package middleware
