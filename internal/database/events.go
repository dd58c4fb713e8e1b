// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simarsingh24/open-event-server/internal/models"
)

const eventColumns = `id, name, description, location_name, latitude, longitude, state, start_time, end_time, COALESCE(event_type_id, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.LocationName, &e.Latitude, &e.Longitude,
		&e.State, &e.StartTime, &e.EndTime, &e.EventTypeID, &e.CreatedAt)
	return e, err
}

func (db *DB) queryEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	events := make([]models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// LiveEvents returns published events that have not ended at now, ordered by
// start time.
func (db *DB) LiveEvents(ctx context.Context, now time.Time) ([]models.Event, error) {
	events, err := db.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE state = $1 AND end_time >= $2 ORDER BY start_time, id`,
		models.EventStatePublished, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query live events: %w", err)
	}
	return events, nil
}

// ListEvents pages through every event, newest start first.
func (db *DB) ListEvents(ctx context.Context, limit, offset int) ([]models.Event, error) {
	events, err := db.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY start_time DESC, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// GetEvent returns ErrNotFound when no event has the id.
func (db *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	e, err := scanEvent(db.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return &e, nil
}

// CreateEvent inserts e, filling ID, State and CreatedAt when empty.
func (db *DB) CreateEvent(ctx context.Context, e *models.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.State == "" {
		e.State = models.EventStateDraft
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = db.now()
	}

	var typeID any
	if e.EventTypeID != "" {
		typeID = e.EventTypeID
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO events (id, name, description, location_name, latitude, longitude, state, start_time, end_time, event_type_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.Name, e.Description, e.LocationName, e.Latitude, e.Longitude, e.State,
		e.StartTime.UTC(), e.EndTime.UTC(), typeID, e.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// EventTypes returns every event type in insertion order.
func (db *DB) EventTypes(ctx context.Context) ([]models.EventType, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, slug, created_at FROM event_types ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query event types: %w", err)
	}
	defer closeWithLog(rows, "rows")

	types := make([]models.EventType, 0)
	for rows.Next() {
		var et models.EventType
		if err := rows.Scan(&et.ID, &et.Name, &et.Slug, &et.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event type: %w", err)
		}
		types = append(types, et)
	}
	return types, rows.Err()
}

// CreateEventType inserts et. A duplicate slug yields ErrConflict.
func (db *DB) CreateEventType(ctx context.Context, et *models.EventType) error {
	if et.ID == "" {
		et.ID = uuid.NewString()
	}
	if et.CreatedAt.IsZero() {
		et.CreatedAt = db.now()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO event_types (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`,
		et.ID, et.Name, et.Slug, et.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create event type: %w", err)
	}
	return nil
}
