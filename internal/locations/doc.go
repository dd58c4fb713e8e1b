// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

/*
Package locations maintains the "popular locations" ranking shown on every page.

Each live event is reverse-geocoded by its latitude and longitude and the
locality short name (the address component typed exactly
["locality", "political"]) is counted once per event. The ranking lists the
most frequent names, highest count first, with ties kept in the order the
names were first seen.

Geocoding never happens on the request path. An Index holds an immutable
Snapshot that page rendering reads lock-free; a supervised service calls
Refresh on a timer and whenever events change:

	idx := locations.NewIndex(db, geocoder, locations.Options{Concurrency: 4, Limit: 10})
	if err := idx.Refresh(ctx); err != nil {
		// previous snapshot still served
	}
	names := idx.Names()

Refresh looks up each distinct coordinate once, with bounded concurrency.
A failed lookup skips its events; a refresh in which every lookup failed,
or in which live events could not be loaded, leaves the previous snapshot
in place.
*/
package locations
