// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package geocode

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/simarsingh24/open-event-server/internal/logging"
)

const storeKeyPrefix = "geocode:"

// Store persists lookup results in BadgerDB so that a restart does not
// re-geocode every live event.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// storedResult is the on-disk form of a lookup. A nil Components slice with
// NoResults set records a coordinate the upstream could not resolve.
type storedResult struct {
	Components []AddressComponent `json:"components"`
	NoResults  bool               `json:"no_results,omitempty"`
	StoredAt   time.Time          `json:"stored_at"`
}

// OpenStore opens (or creates) a store at path. An empty path opens an
// in-memory store, used by tests.
func OpenStore(path string, ttl time.Duration) (*Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create geocode store directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open geocode store: %w", err)
	}

	logging.Info().Str("path", path).Dur("ttl", ttl).Msg("Geocode store opened")
	return &Store{db: db, ttl: ttl}, nil
}

// Get returns the stored components for key. found is false when the key is
// absent or expired. A stored "no results" answer returns ErrNoResults.
func (s *Store) Get(key string) (components []AddressComponent, found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(storeKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var r storedResult
			if err := json.Unmarshal(val, &r); err != nil {
				return fmt.Errorf("corrupt geocode entry %q: %w", key, err)
			}
			found = true
			if r.NoResults {
				return ErrNoResults
			}
			components = r.Components
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	return components, found, err
}

// Put stores a lookup result. Pass ErrNoResults as result to remember an
// unresolvable coordinate; any other error is not stored.
func (s *Store) Put(key string, components []AddressComponent, result error) error {
	r := storedResult{Components: components, StoredAt: time.Now().UTC()}
	if result != nil {
		if !errors.Is(result, ErrNoResults) {
			return nil
		}
		r.NoResults = true
		r.Components = nil
	}

	val, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode geocode entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(storeKeyPrefix+key), val)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close geocode store: %w", err)
	}
	return nil
}
