// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"net/http"

	"github.com/simarsingh24/open-event-server/internal/logging"
)

const notFoundPage = "404.html"

// Fixed bodies of the unmatched-route handlers. Clients match on these
// exact strings, so they stay outside the API envelope.
var (
	notFoundJSON         = map[string]string{"error": "endpoint_not_found"}
	methodNotAllowedJSON = map[string]string{"error": "method_not_allowed"}
)

// NotFound answers requests no route matched. Clients that rate
// application/json above text/html receive {"error":"endpoint_not_found"};
// everyone else gets the 404 page. Both carry status 404.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if PrefersJSON(r.Header.Get("Accept")) {
		writeJSON(w, http.StatusNotFound, notFoundJSON)
		return
	}
	h.renderStatusPage(w, r, http.StatusNotFound)
}

// MethodNotAllowed answers a known path requested with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if PrefersJSON(r.Header.Get("Accept")) {
		writeJSON(w, http.StatusMethodNotAllowed, methodNotAllowedJSON)
		return
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// renderStatusPage renders the 404 template with status and falls back to
// plain text if the template cannot be executed.
func (h *Handler) renderStatusPage(w http.ResponseWriter, r *http.Request, status int) {
	if err := h.renderer.Render(w, r, status, notFoundPage, nil); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("Failed to render error page")
		http.Error(w, http.StatusText(status), status)
	}
}
