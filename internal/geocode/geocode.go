// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

// Package geocode reverse-geocodes event coordinates into address components.
//
// The upstream is the Google Geocoding API (GET ?latlng=lat,lng). Lookups are
// rate limited, retried on transient failures and guarded by a circuit
// breaker. CachedClient layers an in-memory LRU and an optional BadgerDB
// store in front so that repeated coordinates never reach the network twice.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoResults means the upstream answered but knows no address there.
	ErrNoResults = errors.New("geocode: no results")
	// ErrUpstream wraps non-transient upstream failures (denied, invalid request, 4xx).
	ErrUpstream = errors.New("geocode: upstream error")
	// ErrTransient marks failures worth retrying (5xx, quota, unknown error).
	ErrTransient = errors.New("geocode: transient upstream error")
	// ErrInvalidCoordinates rejects latitude/longitude outside the valid range.
	ErrInvalidCoordinates = errors.New("geocode: invalid coordinates")
)

// AddressComponent is one component of a geocoding result.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Client resolves a coordinate to the address components of its best match.
type Client interface {
	Lookup(ctx context.Context, lat, lng float64) ([]AddressComponent, error)
}

// localityTypes is the exact type list of a city-level component.
var localityTypes = []string{"locality", "political"}

// LocalityName returns the short name of the first component whose types
// are exactly ["locality", "political"]. Components that merely include
// those types among others do not match.
func LocalityName(components []AddressComponent) (string, bool) {
	for _, c := range components {
		if equalTypes(c.Types, localityTypes) {
			return c.ShortName, true
		}
	}
	return "", false
}

func equalTypes(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// CoordinateKey normalises a coordinate to six decimals (~0.1 m), which is
// the identity used for caching and for de-duplicating lookups.
func CoordinateKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

// ValidCoordinates reports whether lat/lng are finite and in range.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
