// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package web

import (
	"context"
	"fmt"

	"github.com/simarsingh24/open-event-server/internal/models"
)

// LocationNames is satisfied by *locations.Index.
type LocationNames interface {
	Names() []string
}

// EventTypeStore is satisfied by *database.DB.
type EventTypeStore interface {
	EventTypes(ctx context.Context) ([]models.EventType, error)
}

// LocationsProcessor exposes the most popular location names as "locations".
// It reads the precomputed index and never geocodes.
func LocationsProcessor(index LocationNames, limit int) ContextProcessor {
	return func(context.Context) (map[string]any, error) {
		names := index.Names()
		if limit > 0 && len(names) > limit {
			names = names[:limit]
		}
		return map[string]any{"locations": names}, nil
	}
}

// EventTypesProcessor exposes the first limit event types, in store order,
// as "event_types".
func EventTypesProcessor(store EventTypeStore, limit int) ContextProcessor {
	return func(ctx context.Context) (map[string]any, error) {
		types, err := store.EventTypes(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load event types: %w", err)
		}
		return map[string]any{"event_types": FirstN(types, limit)}, nil
	}
}

// FirstN returns at most the first n items of s, preserving order.
func FirstN[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}
