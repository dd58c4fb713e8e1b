// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package models

import "time"

// Event states.
const (
	EventStateDraft     = "draft"
	EventStatePublished = "published"
)

// Event is a scheduled event with a geographic position.
type Event struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	LocationName string    `json:"location_name,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	State        string    `json:"state"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	EventTypeID  string    `json:"event_type_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsLive reports whether the event is published and has not ended at now.
func (e *Event) IsLive(now time.Time) bool {
	return e.State == EventStatePublished && !now.After(e.EndTime)
}

// EventType is a category such as "Conference" or "Meetup".
type EventType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// LocationCount is one entry of the popular-locations ranking.
type LocationCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
