// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/simarsingh24/open-event-server/internal/models"
)

const (
	defaultPageSize = 20
	maxRequestBody  = 1 << 20
)

// CreateEventRequest is the body of POST /api/v1/events.
type CreateEventRequest struct {
	Name         string    `json:"name" validate:"required,max=200"`
	Description  string    `json:"description" validate:"max=5000"`
	LocationName string    `json:"location_name" validate:"max=200"`
	Latitude     float64   `json:"latitude" validate:"latitude"`
	Longitude    float64   `json:"longitude" validate:"longitude"`
	State        string    `json:"state" validate:"omitempty,oneof=draft published"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	EventTypeID  string    `json:"event_type_id" validate:"omitempty,uuid"`
}

// ToEvent converts the request into a model ready for insertion.
func (req *CreateEventRequest) ToEvent() *models.Event {
	return &models.Event{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		State:        req.State,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		EventTypeID:  req.EventTypeID,
	}
}

// PageParams are the limit/offset query parameters of list endpoints.
type PageParams struct {
	Limit  int `json:"limit" validate:"min=1,max=100"`
	Offset int `json:"offset" validate:"min=0"`
}

// parsePageParams reads limit and offset. A value that is not an integer
// is reported through ok=false; range checks are left to the validator.
func parsePageParams(r *http.Request) (params PageParams, ok bool) {
	params = PageParams{Limit: defaultPageSize}
	q := r.URL.Query()

	for name, dst := range map[string]*int{"limit": &params.Limit, "offset": &params.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, false
		}
		*dst = n
	}
	return params, true
}
