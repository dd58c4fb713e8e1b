// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/simarsingh24/open-event-server/internal/auth"
	"github.com/simarsingh24/open-event-server/internal/authz"
	"github.com/simarsingh24/open-event-server/internal/middleware"
)

// Router assembles the handler and middleware into the HTTP routing tree.
type Router struct {
	handler         *Handler
	chiMiddleware   *ChiMiddleware
	authMiddleware  *auth.Middleware
	authzMiddleware *authz.Middleware
	loginHandler    http.HandlerFunc
	staticURL       string
	staticDirs      []string
}

// NewRouter creates a router over deps.
func NewRouter(deps *Dependencies) *Router {
	static := deps.Config.Static
	dirs := append(append([]string{}, static.Dirs...), static.UploadsDir)

	return &Router{
		handler:         NewHandler(deps),
		chiMiddleware:   NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&deps.Config.Security)),
		authMiddleware:  auth.NewMiddleware(deps.JWTManager),
		authzMiddleware: authz.NewMiddleware(deps.Enforcer),
		loginHandler:    auth.LoginHandler(deps.Authenticator, deps.JWTManager),
		staticURL:       static.URL,
		staticDirs:      dirs,
	}
}

// Handler returns the underlying handler.
func (router *Router) Handler() *Handler {
	return router.handler
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Compress(5, "text/html", "text/css", "application/json", "application/javascript"))
	r.Use(router.authMiddleware.Optional) // pages show the signed-in user when there is one

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	// ========================
	// Pages
	// ========================
	loginLimit := router.chiMiddleware.RateLimitLogin()

	r.Get("/", h.Index)
	r.Get(loginPath, h.LoginPage)
	r.With(loginLimit).Post(loginPath, h.LoginSubmit)
	r.Get("/logout", h.Logout)
	r.Post("/logout", h.Logout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(router.authMiddleware.AuthenticateOrRedirect(loginPath))
		r.Use(router.authzMiddleware.AuthorizeRequest)
		r.Get("/", h.Admin)
	})

	prefix := "/" + strings.Trim(router.staticURL, "/") + "/"
	r.Handle(prefix+"*", staticHandler(prefix, router.staticDirs, h.NotFound))

	// ========================
	// API
	// ========================
	r.Get("/api/health", h.Health)
	r.With(loginLimit).Post("/auth", router.loginHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.With(loginLimit).Post("/auth/login", router.loginHandler)

		r.Get("/events", h.ListEvents)
		r.Get("/events/{id}", h.GetEvent)
		r.Get("/event-types", h.EventTypes)
		r.Get("/locations", h.Locations)

		// Writes need a token and a role the policy allows.
		r.Group(func(r chi.Router) {
			r.Use(router.authMiddleware.Authenticate)
			r.Use(router.authzMiddleware.AuthorizeRequest)
			r.Post("/events", h.CreateEvent)
		})
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
