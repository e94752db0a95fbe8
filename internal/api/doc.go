// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

/*
Package api provides the HTTP API of the recommendation service, routed
with chi.

Endpoints (all under /api/v1):

	GET  /                                    service banner
	GET  /users                               user count and first 50 IDs
	GET  /recommendation-status               users with stored snapshots
	POST /generate-recommendations/{userID}   compute and store a snapshot
	GET  /recommendations/{userID}?limit=10   formatted recommendations
	GET  /recommendations/{userID}/snapshot   last stored snapshot
	POST /activity                            record one interaction
	POST /start-streaming?speed_factor=100    start activity replay
	POST /stop-streaming                      stop activity replay
	GET  /streaming/status                    replay progress
	POST /train                               run one training cycle
	GET  /training/status                     training state
	GET  /evaluate?k=5                        precision@k on a holdout
	GET  /performance                         per-endpoint latency stats
	GET  /health/live, /health/ready          probes

Prometheus metrics are served at /metrics.

Every JSON response uses the models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "query_time_ms": 3}}
	{"status": "error", "error": {"code": "NOT_FOUND", "message": "..."}, "metadata": {...}}

Error codes: VALIDATION_ERROR, NOT_FOUND, CONFLICT, STORAGE_ERROR,
RECOMMENDATION_ERROR, TRAINING_ERROR, EVALUATION_ERROR, STREAMING_ERROR,
SERVICE_UNAVAILABLE, RATE_LIMIT_EXCEEDED.

Middleware: request and correlation IDs, real client IP, panic recovery,
go-chi/cors, response compression, go-chi/httprate (stricter for /train and
/evaluate), Prometheus request metrics and the in-process performance
monitor.
*/
package api
