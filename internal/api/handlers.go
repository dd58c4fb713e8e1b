// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"context"
	"time"

	"github.com/simarsingh24/open-event-server/internal/auth"
	"github.com/simarsingh24/open-event-server/internal/authz"
	"github.com/simarsingh24/open-event-server/internal/config"
	"github.com/simarsingh24/open-event-server/internal/locations"
	"github.com/simarsingh24/open-event-server/internal/models"
	"github.com/simarsingh24/open-event-server/internal/web"
)

// EventStore is the data access the handlers need. *database.DB satisfies it.
type EventStore interface {
	Ping(ctx context.Context) error
	LiveEvents(ctx context.Context, now time.Time) ([]models.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, e *models.Event) error
	EventTypes(ctx context.Context) ([]models.EventType, error)
}

// LocationIndex exposes the current popular-locations snapshot.
type LocationIndex interface {
	Snapshot() locations.Snapshot
}

// EventPublisher announces event writes so derived data can be rebuilt.
type EventPublisher interface {
	PublishEventsChanged(ctx context.Context, eventID string) error
}

// Dependencies are the collaborators the HTTP layer is assembled from.
type Dependencies struct {
	Config        *config.Config
	Store         EventStore
	Index         LocationIndex
	Publisher     EventPublisher
	Renderer      *web.Renderer
	JWTManager    *auth.JWTManager
	Authenticator *auth.Authenticator
	Enforcer      *authz.Enforcer
}

// Handler contains dependencies for API and page handlers.
//
// Handler methods are split across files:
//   - handlers_core.go: health, events, event types, locations
//   - handlers_pages.go: index, login, logout and admin pages
//   - errors.go: not-found and method-not-allowed
type Handler struct {
	config    *config.Config
	store     EventStore
	index     LocationIndex
	publisher EventPublisher
	renderer  *web.Renderer
	jwt       *auth.JWTManager
	authn     *auth.Authenticator
	startTime time.Time
}

// NewHandler creates a handler from deps.
func NewHandler(deps *Dependencies) *Handler {
	return &Handler{
		config:    deps.Config,
		store:     deps.Store,
		index:     deps.Index,
		publisher: deps.Publisher,
		renderer:  deps.Renderer,
		jwt:       deps.JWTManager,
		authn:     deps.Authenticator,
		startTime: time.Now(),
	}
}
