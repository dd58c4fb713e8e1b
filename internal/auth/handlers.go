// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

// Package auth issues and verifies JWT bearer tokens for email and password
// users.
//
// A client posts {"email": ..., "password": ...} to the login endpoint and
// receives {"access_token": ...}. The token is accepted afterwards from an
// "Authorization: Bearer" header or, for browsers, from the "token" cookie.
// The field carrying the user name is configurable (security.username_key)
// and defaults to "email"; tokens expire after 24 hours by default.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/simarsingh24/open-event-server/internal/logging"
)

const maxLoginBody = 64 << 10

// TokenResponse is the body returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// LoginHandler exchanges credentials for a token.
// POST /auth and POST /api/v1/auth/login
//
// @Summary Exchange email and password for a token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} TokenResponse
// @Failure 400 "Bad Request"
// @Failure 401 "Unauthorized"
// @Failure 429 "Too Many Requests"
// @Router /api/v1/auth/login [post]
func LoginHandler(authn *Authenticator, jwtManager *JWTManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody))
		if err := dec.Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
			return
		}

		username, _ := body[jwtManager.UsernameKey()].(string)
		password, _ := body["password"].(string)
		if strings.TrimSpace(username) == "" || password == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
			return
		}

		identity, err := authn.Authenticate(r.Context(), username, password)
		if errors.Is(err, ErrInvalidCredentials) {
			logging.Ctx(r.Context()).Info().Str("username_key", jwtManager.UsernameKey()).Msg("Login rejected")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_credentials"})
			return
		}
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Login failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
			return
		}

		token, err := jwtManager.GenerateToken(identity)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue token")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
			return
		}

		logging.Ctx(r.Context()).Info().Str("user_id", identity.ID).Str("role", identity.Role).Msg("Token issued")
		writeJSON(w, http.StatusOK, TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(jwtManager.Expiry().Seconds()),
		})
	}
}

// SetTokenCookie stores token in the browser session cookie.
func SetTokenCookie(w http.ResponseWriter, r *http.Request, token string, jwtManager *JWTManager) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(jwtManager.Expiry().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie removes the session cookie.
func ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode auth response")
	}
}
