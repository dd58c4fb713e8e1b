// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simarsingh24/open-event-server/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds IDs accepted from upstream proxies.
const maxRequestIDLength = 128

// RequestID middleware generates a unique ID for each request, adds it to
// the response header and the logging context, and logs the completed
// request at info level (debug for the health and metrics probes).
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Keep an ID from an upstream proxy when it looks sane
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		start := time.Now()
		sw := newStatusWriter(w)

		next.ServeHTTP(sw, r.WithContext(ctx))

		logRequest(ctx, r, sw, time.Since(start))
	})
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}

func logRequest(ctx context.Context, r *http.Request, sw *statusWriter, elapsed time.Duration) {
	logger := logging.Ctx(ctx)

	var event *zerolog.Event
	switch {
	case sw.statusCode >= http.StatusInternalServerError:
		event = logger.Error()
	case r.URL.Path == "/api/health" || r.URL.Path == "/metrics":
		event = logger.Debug()
	default:
		event = logger.Info()
	}

	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", sw.statusCode).
		Int("bytes", sw.bytes).
		Dur("duration", elapsed).
		Str("remote_addr", r.RemoteAddr).
		Msg("HTTP request")
}
