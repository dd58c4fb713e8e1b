// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

// Package main provides the Open Event HTTP server
//
// @title Open Event API
// @version 1.0
// @description Event management API: events, event types and the popular-locations ranking.
// @description
// @description ## Authentication
// @description
// @description Reads are public. Writes need a JWT obtained from `POST /api/v1/auth/login`
// @description (body `{"email": "...", "password": "..."}`), sent as `Authorization: Bearer <token>`
// @description or through the `token` cookie set by the login page. Tokens expire after 24 hours.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "status": "error",
// @description   "error": {"code": "ERROR_CODE", "message": "Human-readable error message"},
// @description   "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
// @description }
// @description ```
// @description
// @description Unknown endpoints answer `{"error":"endpoint_not_found"}` with status 404 when the
// @description client prefers JSON over HTML.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/simarsingh24/open-event-server/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:5000
// @BasePath /
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Bearer" followed by the token from /api/v1/auth/login.
//
// @tag.name Core
// @tag.description Health checks
//
// @tag.name Events
// @tag.description Events, event types and popular locations
//
// @tag.name Auth
// @tag.description Token issuance
package main
