// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/simarsingh24/open-event-server/internal/logging"
	"github.com/simarsingh24/open-event-server/internal/models"
	"github.com/simarsingh24/open-event-server/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
)

// respondJSON writes a success envelope with status.
func respondJSON(w http.ResponseWriter, status int, data interface{}, meta *models.Metadata) {
	if meta == nil {
		meta = &models.Metadata{}
	}
	meta.Timestamp = time.Now().UTC()

	writeJSON(w, status, models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: *meta,
	})
}

// respondList writes data with its length in the metadata.
func respondList[T any](w http.ResponseWriter, items []T, meta *models.Metadata) {
	if meta == nil {
		meta = &models.Metadata{}
	}
	count := len(items)
	meta.Count = &count
	respondJSON(w, http.StatusOK, items, meta)
}

// respondError writes an error envelope with status.
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	writeJSON(w, status, models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondValidationError writes a 400 with per-field failures.
func respondValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
}

// respondDatabaseError logs err and writes a generic 500.
func respondDatabaseError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Database error")
	respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "A database error occurred", nil)
}

// writeJSON writes v as JSON with proper headers.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
