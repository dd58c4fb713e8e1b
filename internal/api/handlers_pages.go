// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/simarsingh24/open-event-server/internal/auth"
	"github.com/simarsingh24/open-event-server/internal/logging"
)

const (
	loginPath        = "/login"
	adminPath        = "/admin/"
	indexEventsLimit = 20
)

// Index renders the home page with the upcoming live events.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.LiveEvents(r.Context(), time.Now())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to load live events")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if len(events) > indexEventsLimit {
		events = events[:indexEventsLimit]
	}

	h.render(w, r, http.StatusOK, "index.html", map[string]any{"events": events})
}

// LoginPage renders the sign-in form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.ClaimsFromContext(r.Context()); ok {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login.html", map[string]any{
		"next":         r.URL.Query().Get("next"),
		"username_key": h.jwt.UsernameKey(),
	})
}

// LoginSubmit checks the form credentials, stores the token cookie and
// redirects to the page that asked for sign-in.
func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	key := h.jwt.UsernameKey()
	username := strings.TrimSpace(r.PostForm.Get(key))
	next := r.PostForm.Get("next")

	identity, err := h.authn.Authenticate(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		status := http.StatusUnauthorized
		message := "Invalid email or password."
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Login failed")
			status = http.StatusInternalServerError
			message = "Sign-in is unavailable, please try again later."
		}
		h.render(w, r, status, "login.html", map[string]any{
			"error":        message,
			"email":        username,
			"next":         next,
			"username_key": key,
		})
		return
	}

	token, err := h.jwt.GenerateToken(identity)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue token")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	auth.SetTokenCookie(w, r, token, h.jwt)
	logging.Ctx(r.Context()).Info().Str("user_id", identity.ID).Msg("User signed in")
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

// Logout clears the token cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Admin renders the administration landing page. A token whose user was
// deleted is dropped and the browser is sent back to sign in.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	identity, err := h.authn.Identity(r.Context(), claims)
	if errors.Is(err, auth.ErrUnknownIdentity) {
		auth.ClearTokenCookie(w)
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to resolve identity")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	snap := h.index.Snapshot()

	var updatedAt *time.Time
	if !snap.UpdatedAt.IsZero() {
		updatedAt = &snap.UpdatedAt
	}

	h.render(w, r, http.StatusOK, "admin.html", map[string]any{
		"user_email":       identity.Email,
		"user_role":        identity.Role,
		"live_events":      snap.Events,
		"index_updated_at": updatedAt,
		"index_skipped":    snap.Skipped,
		"location_counts":  snap.Locations,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	if err := h.renderer.Render(w, r, status, page, data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// safeNext keeps redirects on this site. Anything but a local absolute
// path falls back to the admin page.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return adminPath
	}
	return next
}
