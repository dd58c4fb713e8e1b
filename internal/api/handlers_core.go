// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/simarsingh24/open-event-server/internal/database"
	"github.com/simarsingh24/open-event-server/internal/logging"
	"github.com/simarsingh24/open-event-server/internal/models"
	"github.com/simarsingh24/open-event-server/internal/validation"
)

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status             string     `json:"status"`
	Database           bool       `json:"database"`
	Uptime             float64    `json:"uptime_seconds"`
	LocationsUpdatedAt *time.Time `json:"locations_updated_at,omitempty"`
}

// Health reports database connectivity and the age of the location index.
//
// @Summary Get system health status
// @Description Returns database connectivity, uptime and when the popular-locations index was last built. Responds 503 when the database is unreachable.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=HealthStatus} "Healthy"
// @Failure 503 {object} models.APIResponse{data=HealthStatus} "Database unreachable"
// @Router /api/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:   "healthy",
		Database: true,
		Uptime:   time.Since(h.startTime).Seconds(),
	}
	if updated := h.index.Snapshot().UpdatedAt; !updated.IsZero() {
		status.LocationsUpdatedAt = &updated
	}

	code := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: database unreachable")
		status.Status = "degraded"
		status.Database = false
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, status, nil)
}

// ListEvents returns a page of events, newest start time first.
//
// @Summary List events
// @Tags Events
// @Produce json
// @Param limit query int false "Page size (1-100)" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.APIResponse{data=[]models.Event}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	params, ok := parsePageParams(r)
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "limit and offset must be integers", nil)
		return
	}
	if verr := validation.ValidateStruct(&params); verr != nil {
		respondValidationError(w, verr)
		return
	}

	events, err := h.store.ListEvents(r.Context(), params.Limit, params.Offset)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondList(w, events, nil)
}

// GetEvent returns one event.
//
// @Summary Get an event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} models.APIResponse{data=models.Event}
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.store.GetEvent(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "event not found", nil)
		return
	}
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, event, nil)
}

// CreateEvent stores a new event and announces the change so the location
// index is rebuilt.
//
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event"
// @Success 201 {object} models.APIResponse{data=models.Event}
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Security BearerAuth
// @Router /api/v1/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body", nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	event := req.ToEvent()
	err := h.store.CreateEvent(r.Context(), event)
	if errors.Is(err, database.ErrConflict) {
		respondError(w, http.StatusConflict, ErrCodeConflict, "event already exists", nil)
		return
	}
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("event_id", event.ID).Str("state", event.State).Msg("Event created")

	// The event is stored either way; a lost notification only delays the
	// index until its next scheduled refresh.
	if err := h.publisher.PublishEventsChanged(r.Context(), event.ID); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("event_id", event.ID).Msg("Failed to publish events change")
	}

	respondJSON(w, http.StatusCreated, event, nil)
}

// EventTypes lists every event type in source order.
//
// @Summary List event types
// @Tags Events
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.EventType}
// @Router /api/v1/event-types [get]
func (h *Handler) EventTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.store.EventTypes(r.Context())
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondList(w, types, nil)
}

// Locations returns the precomputed popular-locations ranking. It never
// geocodes; an index that was not built yet yields an empty list.
//
// @Summary Popular event locations
// @Description Most frequent localities of live events, most common first, from the last index build.
// @Tags Events
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.LocationCount}
// @Router /api/v1/locations [get]
func (h *Handler) Locations(w http.ResponseWriter, _ *http.Request) {
	snap := h.index.Snapshot()

	items := snap.Locations
	if items == nil {
		items = []models.LocationCount{}
	}

	meta := &models.Metadata{}
	if !snap.UpdatedAt.IsZero() {
		updated := snap.UpdatedAt
		meta.UpdatedAt = &updated
	}
	respondList(w, items, meta)
}
