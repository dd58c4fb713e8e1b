// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package geocode

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/simarsingh24/open-event-server/internal/cache"
	"github.com/simarsingh24/open-event-server/internal/config"
	"github.com/simarsingh24/open-event-server/internal/logging"
	"github.com/simarsingh24/open-event-server/internal/metrics"
)

// lruEntry is what the memory tier holds; noResults mirrors storedResult.
type lruEntry struct {
	components []AddressComponent
	noResults  bool
}

// CachedClient answers from memory, then the persistent store, then the
// upstream client. Concurrent lookups of the same coordinate share a single
// upstream call.
type CachedClient struct {
	upstream Client
	memory   *cache.LRU[lruEntry]
	store    *Store
	group    singleflight.Group
}

// NewCachedClient wraps upstream. store may be nil.
func NewCachedClient(upstream Client, size int, ttl time.Duration, store *Store) *CachedClient {
	return &CachedClient{
		upstream: upstream,
		memory:   cache.NewLRU[lruEntry](size, ttl),
		store:    store,
	}
}

// New builds the production client chain from configuration: a GoogleClient
// behind the memory cache and, when StorePath is set, the Badger store.
func New(cfg *config.GeocodeConfig) (*CachedClient, error) {
	upstream := NewGoogleClient(GoogleOptions{
		BaseURL:       cfg.BaseURL,
		APIKey:        cfg.APIKey,
		Timeout:       cfg.Timeout,
		RateLimit:     cfg.RateLimit,
		Burst:         cfg.Burst,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		Breaker: BreakerSettings{
			Name:        "geocode-api",
			MaxFailures: cfg.BreakerMaxFailures,
			Timeout:     cfg.BreakerTimeout,
		},
	})

	var store *Store
	if cfg.StorePath != "" {
		s, err := OpenStore(cfg.StorePath, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		store = s
	}
	return NewCachedClient(upstream, cfg.CacheSize, cfg.CacheTTL, store), nil
}

// Lookup implements Client.
func (c *CachedClient) Lookup(ctx context.Context, lat, lng float64) ([]AddressComponent, error) {
	key := CoordinateKey(lat, lng)

	if e, ok := c.memory.Get(key); ok {
		metrics.RecordGeocodeCache("memory", true)
		if e.noResults {
			return nil, ErrNoResults
		}
		return e.components, nil
	}
	metrics.RecordGeocodeCache("memory", false)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A flight that finished between the miss above and Do has filled memory.
		if e, ok := c.memory.Get(key); ok {
			if e.noResults {
				return nil, ErrNoResults
			}
			return e.components, nil
		}
		if c.store != nil {
			components, found, err := c.store.Get(key)
			metrics.RecordGeocodeCache("store", found)
			if found {
				c.remember(key, components, err)
				return components, err
			}
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("latlng", key).Msg("Geocode store read failed")
			}
		}

		components, err := c.upstream.Lookup(ctx, lat, lng)
		if err != nil && !errors.Is(err, ErrNoResults) {
			return nil, err
		}
		c.remember(key, components, err)
		if c.store != nil {
			if perr := c.store.Put(key, components, err); perr != nil {
				logging.Ctx(ctx).Warn().Err(perr).Str("latlng", key).Msg("Geocode store write failed")
			}
		}
		return components, err
	})
	if err != nil {
		return nil, err
	}
	components, _ := v.([]AddressComponent)
	return components, nil
}

func (c *CachedClient) remember(key string, components []AddressComponent, err error) {
	c.memory.Set(key, lruEntry{components: components, noResults: errors.Is(err, ErrNoResults)})
}

// Stats exposes the memory tier's counters.
func (c *CachedClient) Stats() cache.Stats {
	return c.memory.Stats()
}

// Close releases the persistent store, if any.
func (c *CachedClient) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
