// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package locations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simarsingh24/open-event-server/internal/geocode"
	"github.com/simarsingh24/open-event-server/internal/logging"
	"github.com/simarsingh24/open-event-server/internal/metrics"
	"github.com/simarsingh24/open-event-server/internal/models"
)

// ErrAllLookupsFailed is returned when every geocode lookup of a refresh
// failed. The previous snapshot is kept.
var ErrAllLookupsFailed = errors.New("locations: all geocode lookups failed")

// EventSource supplies the events currently considered live.
type EventSource interface {
	LiveEvents(ctx context.Context, now time.Time) ([]models.Event, error)
}

// Snapshot is one immutable build of the popular-locations ranking.
type Snapshot struct {
	Locations []models.LocationCount `json:"locations"`
	UpdatedAt time.Time              `json:"updated_at"`
	// Events is the number of live events the ranking was built from.
	Events int `json:"events"`
	// Skipped counts live events that contributed no name.
	Skipped int `json:"skipped"`
}

// Options configures an Index.
type Options struct {
	// Concurrency bounds simultaneous geocode lookups. Default 4.
	Concurrency int
	// Limit is the ranking length. Default 10.
	Limit int
}

// Index holds the latest Snapshot and rebuilds it on demand. Reads never
// block on a rebuild.
type Index struct {
	source   EventSource
	geocoder geocode.Client
	opts     Options
	now      func() time.Time

	refreshMu sync.Mutex
	current   atomic.Pointer[Snapshot]
}

// NewIndex creates an empty index.
func NewIndex(source EventSource, geocoder geocode.Client, opts Options) *Index {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	idx := &Index{
		source:   source,
		geocoder: geocoder,
		opts:     opts,
		now:      time.Now,
	}
	idx.current.Store(&Snapshot{Locations: []models.LocationCount{}})
	return idx
}

// Snapshot returns the latest ranking.
func (idx *Index) Snapshot() Snapshot {
	return *idx.current.Load()
}

// Names returns the ranked location names.
func (idx *Index) Names() []string {
	return Names(idx.current.Load().Locations)
}

// UpdatedAt is the time of the last successful refresh; zero before the first.
func (idx *Index) UpdatedAt() time.Time {
	return idx.current.Load().UpdatedAt
}

type coordinate struct {
	lat, lng float64
}

type lookupResult struct {
	name   string
	ok     bool
	failed bool
}

// Refresh rebuilds the ranking from the current live events. Concurrent
// calls are serialised. On error the previous snapshot stays in place.
func (idx *Index) Refresh(ctx context.Context) error {
	idx.refreshMu.Lock()
	defer idx.refreshMu.Unlock()

	start := time.Now()
	snap, err := idx.build(ctx)
	if err != nil {
		metrics.RecordIndexRefresh(time.Since(start), 0, 0, err)
		return err
	}
	idx.current.Store(snap)
	metrics.RecordIndexRefresh(time.Since(start), len(snap.Locations), snap.Skipped, nil)

	logging.Ctx(ctx).Debug().
		Int("events", snap.Events).
		Int("locations", len(snap.Locations)).
		Int("skipped", snap.Skipped).
		Dur("duration", time.Since(start)).
		Msg("Location index refreshed")
	return nil
}

func (idx *Index) build(ctx context.Context) (*Snapshot, error) {
	now := idx.now()
	fetched, err := idx.source.LiveEvents(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load live events: %w", err)
	}
	// The source may be a cache or replica that lags behind the clock.
	events := fetched[:0:0]
	for i := range fetched {
		if fetched[i].IsLive(now) {
			events = append(events, fetched[i])
		}
	}

	// One lookup per distinct coordinate.
	keys := make([]string, len(events))
	slots := make(map[string]int)
	var coords []coordinate
	for i := range events {
		e := &events[i]
		if !geocode.ValidCoordinates(e.Latitude, e.Longitude) {
			continue
		}
		key := geocode.CoordinateKey(e.Latitude, e.Longitude)
		keys[i] = key
		if _, ok := slots[key]; !ok {
			slots[key] = len(coords)
			coords = append(coords, coordinate{e.Latitude, e.Longitude})
		}
	}

	results := make([]lookupResult, len(coords))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.opts.Concurrency)
	for i, c := range coords {
		g.Go(func() error {
			components, err := idx.geocoder.Lookup(gctx, c.lat, c.lng)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if !errors.Is(err, geocode.ErrNoResults) {
					results[i].failed = true
					logging.Ctx(ctx).Warn().Err(err).Str("latlng", geocode.CoordinateKey(c.lat, c.lng)).Msg("Geocode lookup failed, skipping")
				}
				return nil
			}
			results[i].name, results[i].ok = geocode.LocalityName(components)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("location refresh interrupted: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.failed {
			failed++
		}
	}
	if len(coords) > 0 && failed == len(coords) {
		return nil, ErrAllLookupsFailed
	}

	var counter Counter
	skipped := 0
	for i := range events {
		if keys[i] == "" {
			skipped++
			continue
		}
		r := results[slots[keys[i]]]
		if !r.ok {
			skipped++
			continue
		}
		counter.Add(r.name)
	}

	return &Snapshot{
		Locations: counter.MostCommon(idx.opts.Limit),
		UpdatedAt: now,
		Events:    len(events),
		Skipped:   skipped,
	}, nil
}
