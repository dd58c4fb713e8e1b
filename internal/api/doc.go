// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

/*
Package api wires the HTTP surface of the server onto a chi router.

Routes:

	GET  /                        home page (live events)
	GET  /login, POST /login      browser sign-in, sets the token cookie
	GET|POST /logout              clears the token cookie
	GET  /admin/                  administration page (admin role)
	GET  /static/*                static files and uploads
	GET  /api/health              database and location index status
	POST /auth                    token login
	POST /api/v1/auth/login       token login
	GET  /api/v1/events           paged events
	GET  /api/v1/events/{id}      one event
	POST /api/v1/events           create an event (token, admin role)
	GET  /api/v1/event-types      event types in source order
	GET  /api/v1/locations        popular locations from the last index build
	GET  /metrics                 Prometheus
	GET  /swagger/*               OpenAPI UI

Unmatched paths are answered by Handler.NotFound, which negotiates the
Accept header: clients that rate application/json strictly above text/html
get {"error":"endpoint_not_found"}, everyone else the 404 page. Both use
status 404.

JSON endpoints wrap their payload in models.APIResponse.
*/
package api
