// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"math"
	"strings"

	"github.com/munnerz/goautoneg"
)

const (
	mimeJSON = "application/json"
	mimeHTML = "text/html"
)

// Quality returns the q-value the Accept header grants offer. The highest
// q among matching media ranges wins. An empty header accepts everything
// at q=1; a header that matches nothing yields 0. The result is rounded to
// the three decimals a q-value may carry.
func Quality(accept, offer string) float64 {
	if strings.TrimSpace(accept) == "" {
		accept = "*/*"
	}
	offerType, offerSubType, ok := strings.Cut(offer, "/")
	if !ok {
		return 0
	}

	best := 0.0
	for _, clause := range goautoneg.ParseAccept(accept) {
		if !rangeMatches(clause, offerType, offerSubType) {
			continue
		}
		if q := roundQ(float64(clause.Q)); q > best {
			best = q
		}
	}
	return best
}

// roundQ undoes the float32 widening goautoneg applies when parsing q.
func roundQ(q float64) float64 {
	return math.Round(q*1000) / 1000
}

func rangeMatches(clause goautoneg.Accept, typ, subType string) bool {
	switch {
	case clause.Type == "*" && clause.SubType == "*":
		return true
	case !strings.EqualFold(clause.Type, typ):
		return false
	case clause.SubType == "*":
		return true
	default:
		return strings.EqualFold(clause.SubType, subType)
	}
}

// Negotiate returns the offer with the highest quality and that quality.
// Ties go to the earlier offer. It returns "", 0 when nothing is acceptable.
func Negotiate(accept string, offers ...string) (string, float64) {
	best, bestQ := "", 0.0
	for _, offer := range offers {
		if q := Quality(accept, offer); q > bestQ {
			best, bestQ = offer, q
		}
	}
	return best, bestQ
}

// PrefersJSON reports whether the client rates application/json strictly
// above text/html. Equal ratings, including a missing Accept header,
// favour HTML.
func PrefersJSON(accept string) bool {
	best, q := Negotiate(accept, mimeJSON, mimeHTML)
	return best == mimeJSON && q > Quality(accept, mimeHTML)
}
