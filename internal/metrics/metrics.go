// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
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

	APINotFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_not_found_total",
			Help: "Requests that matched no route, by negotiated representation",
		},
		[]string{"format"}, // "json", "html"
	)

	// Geocoding Metrics
	GeocodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_requests_total",
			Help: "Upstream reverse-geocoding requests",
		},
		[]string{"result"}, // "success", "no_results", "error"
	)

	GeocodeRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geocode_request_duration_seconds",
			Help:    "Upstream reverse-geocoding latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	GeocodeCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_cache_lookups_total",
			Help: "Geocode cache lookups by tier and outcome",
		},
		[]string{"tier", "result"}, // tier: "memory", "store"; result: "hit", "miss"
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

	// Location Index Metrics
	LocationIndexRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_index_refreshes_total",
			Help: "Location index rebuilds by outcome",
		},
		[]string{"result"}, // "success", "error"
	)

	LocationIndexRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "location_index_refresh_duration_seconds",
			Help:    "Time to rebuild the location index",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	LocationIndexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "location_index_locations",
			Help: "Distinct locality names in the current index snapshot",
		},
	)

	LocationIndexSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "location_index_skipped_events_total",
			Help: "Live events left out of the index because geocoding failed",
		},
	)

	LocationIndexLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "location_index_last_success_timestamp",
			Help: "Unix time of the last successful index rebuild",
		},
	)

	// Event bus
	EventBusPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_published_total",
			Help: "Messages published to the in-process event bus",
		},
		[]string{"topic"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordGeocodeRequest records one upstream geocoding call.
func RecordGeocodeRequest(result string, duration time.Duration) {
	GeocodeRequestsTotal.WithLabelValues(result).Inc()
	GeocodeRequestDuration.Observe(duration.Seconds())
}

// RecordGeocodeCache records a cache lookup on tier.
func RecordGeocodeCache(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	GeocodeCacheLookups.WithLabelValues(tier, result).Inc()
}

// RecordIndexRefresh records one location index rebuild.
func RecordIndexRefresh(duration time.Duration, locations, skipped int, err error) {
	LocationIndexRefreshDuration.Observe(duration.Seconds())
	if err != nil {
		LocationIndexRefreshes.WithLabelValues("error").Inc()
		return
	}
	LocationIndexRefreshes.WithLabelValues("success").Inc()
	LocationIndexSize.Set(float64(locations))
	LocationIndexSkipped.Add(float64(skipped))
	LocationIndexLastSuccess.Set(float64(time.Now().Unix()))
}
