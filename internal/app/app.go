// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

// Package app assembles the server from its configuration.
//
// Create performs the whole bootstrap: it opens and migrates the database,
// builds token auth and the role enforcer, the geocoder and location index,
// the event bus, the template renderer with its context processors and the
// chi router, and finally the supervisor tree that runs the HTTP listener
// and the location indexer. Any failure is returned as a startup error and
// everything opened so far is released.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/simarsingh24/open-event-server/internal/api"
	"github.com/simarsingh24/open-event-server/internal/auth"
	"github.com/simarsingh24/open-event-server/internal/authz"
	"github.com/simarsingh24/open-event-server/internal/config"
	"github.com/simarsingh24/open-event-server/internal/database"
	"github.com/simarsingh24/open-event-server/internal/eventbus"
	"github.com/simarsingh24/open-event-server/internal/geocode"
	"github.com/simarsingh24/open-event-server/internal/locations"
	"github.com/simarsingh24/open-event-server/internal/logging"
	"github.com/simarsingh24/open-event-server/internal/supervisor"
	"github.com/simarsingh24/open-event-server/internal/supervisor/services"
	"github.com/simarsingh24/open-event-server/internal/web"
)

const (
	// authzCacheTTL bounds how long a role decision is reused.
	authzCacheTTL = 5 * time.Minute

	httpShutdownTimeout = 10 * time.Second
	httpIdleTimeout     = 60 * time.Second
)

// App is a fully wired server.
type App struct {
	Config   *config.Config
	DB       *database.DB
	JWT      *auth.JWTManager
	Auth     *auth.Authenticator
	Enforcer *authz.Enforcer
	Index    *locations.Index
	Bus      *eventbus.Bus
	Renderer *web.Renderer
	Handler  http.Handler
	Server   *http.Server
	Tree     *supervisor.SupervisorTree

	geocoder geocode.Client
	closers  []func() error
}

// Create builds the application for cfg.
func Create(ctx context.Context, cfg *config.Config) (a *App, err error) {
	a = &App{Config: cfg}
	defer func() {
		if err != nil {
			if closeErr := a.Close(); closeErr != nil {
				logging.Warn().Err(closeErr).Msg("Cleanup after failed startup reported errors")
			}
			a = nil
		}
	}()

	if err = a.openDatabase(ctx); err != nil {
		return a, err
	}
	if err = a.setupAuth(); err != nil {
		return a, err
	}
	if err = a.setupLocations(); err != nil {
		return a, err
	}

	a.Bus = eventbus.New()
	a.closers = append(a.closers, a.Bus.Close)

	if err = a.setupRenderer(); err != nil {
		return a, err
	}

	a.Handler = api.NewRouter(&api.Dependencies{
		Config:        cfg,
		Store:         a.DB,
		Index:         a.Index,
		Publisher:     a.Bus,
		Renderer:      a.Renderer,
		JWTManager:    a.JWT,
		Authenticator: a.Auth,
		Enforcer:      a.Enforcer,
	}).SetupChi()

	if err = a.SeedAdmin(ctx); err != nil {
		return a, err
	}
	if err = a.buildTree(); err != nil {
		return a, err
	}

	logging.Info().Str("config", cfg.String()).Msg("Application created")
	return a, nil
}

func (a *App) openDatabase(ctx context.Context) error {
	db, err := database.New(&a.Config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)

	if !a.Config.Database.AutoMigrate {
		return nil
	}
	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if applied > 0 {
		logging.Info().Int("applied", applied).Msg("Database migrations applied")
	}
	return nil
}

func (a *App) setupAuth() error {
	jwtManager, err := auth.NewJWTManager(&a.Config.Security)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT manager: %w", err)
	}
	authn, err := auth.NewAuthenticator(a.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize authenticator: %w", err)
	}
	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{CacheTTL: authzCacheTTL})
	if err != nil {
		return fmt.Errorf("failed to initialize authorization: %w", err)
	}
	a.JWT, a.Auth, a.Enforcer = jwtManager, authn, enforcer
	return nil
}

func (a *App) setupLocations() error {
	if a.Config.Geocode.Enabled {
		client, err := geocode.New(&a.Config.Geocode)
		if err != nil {
			return fmt.Errorf("failed to initialize geocoder: %w", err)
		}
		a.geocoder = client
		a.closers = append(a.closers, client.Close)
	} else {
		a.geocoder = offlineGeocoder{}
		logging.Info().Msg("Geocoding disabled, location index stays empty")
	}

	a.Index = locations.NewIndex(a.DB, a.geocoder, locations.Options{
		Concurrency: a.Config.Locations.Concurrency,
		Limit:       a.Config.Locations.Limit,
	})
	return nil
}

func (a *App) setupRenderer() error {
	renderer, err := web.NewRenderer(web.Options{
		Dir:             a.Config.Templates.Dir,
		StrictUndefined: a.Config.Templates.StrictUndefined,
		StaticURL:       a.Config.Static.URL,
	})
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	renderer.Register("locations", web.LocationsProcessor(a.Index, a.Config.Locations.Limit))
	renderer.Register("event_types", web.EventTypesProcessor(a.DB, a.Config.EventTypes.Limit))
	renderer.Register("current_user", api.CurrentUserProcessor())
	a.Renderer = renderer
	return nil
}

func (a *App) buildTree() error {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	a.Server = &http.Server{
		Addr:              a.Config.Addr(),
		Handler:           a.Handler,
		ReadHeaderTimeout: a.Config.Server.Timeout,
		ReadTimeout:       a.Config.Server.Timeout,
		WriteTimeout:      a.Config.Server.Timeout,
		IdleTimeout:       httpIdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(a.Server, httpShutdownTimeout, logging.WithComponent("http")))

	if a.Config.Geocode.Enabled {
		tree.AddDataService(services.NewLocationIndexService(a.Index, a.Bus, services.LocationIndexConfig{
			RefreshInterval: a.Config.Locations.RefreshInterval,
		}, logging.WithComponent("locations")))
	}

	a.Tree = tree
	return nil
}

// Run serves the supervisor tree until ctx is canceled. Services that do
// not stop within their timeout are logged.
func (a *App) Run(ctx context.Context) error {
	logging.Info().Str("addr", a.Server.Addr).Msg("Starting supervisor tree")
	err := <-a.Tree.ServeBackground(ctx)

	if unstopped, reportErr := a.Tree.UnstoppedServiceReport(); reportErr == nil {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("supervisor tree stopped: %w", err)
	}
	return nil
}

// Close releases everything Create opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// offlineGeocoder stands in when geocoding is disabled. Every coordinate
// resolves to nothing, so a refresh yields an empty ranking.
type offlineGeocoder struct{}

func (offlineGeocoder) Lookup(context.Context, float64, float64) ([]geocode.AddressComponent, error) {
	return nil, geocode.ErrNoResults
}
