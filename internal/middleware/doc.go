// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

/*
Package middleware provides infrastructure HTTP middleware shared by every route.

  - RequestID: assigns or propagates X-Request-ID, stores it in the context
    for logging.Ctx and writes one access log line per request.
  - PrometheusMetrics: records request count, latency and in-flight requests,
    labelled by the chi route pattern rather than the raw path so that
    /api/v1/events/{id} stays a single series.

Both are func(http.Handler) http.Handler and plug directly into chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
