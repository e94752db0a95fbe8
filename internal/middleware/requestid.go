// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/marketlens/internal/logging"
)

// Tracing headers
const (
	RequestIDHeader     = "X-Request-ID"
	CorrelationIDHeader = "X-Correlation-ID"
)

// maxIDLength bounds client-supplied IDs before they reach logs.
const maxIDLength = 64

// RequestID assigns every request a request ID and a correlation ID.
//
// A client-supplied X-Request-ID or X-Correlation-ID is kept when it is
// short enough; otherwise new IDs are generated. Both IDs are echoed in the
// response headers and stored in the request context, where logging.Ctx and
// chi's GetReqID pick them up.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := headerID(r, RequestIDHeader, logging.GenerateRequestID)
		correlationID := headerID(r, CorrelationIDHeader, logging.GenerateCorrelationID)

		w.Header().Set(RequestIDHeader, requestID)
		w.Header().Set(CorrelationIDHeader, correlationID)

		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, requestID)
		ctx = logging.ContextWithRequestID(ctx, requestID)
		ctx = logging.ContextWithCorrelationID(ctx, correlationID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func headerID(r *http.Request, header string, generate func() string) string {
	if id := r.Header.Get(header); id != "" && len(id) <= maxIDLength {
		return id
	}
	return generate()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}
