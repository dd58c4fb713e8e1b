// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

/*
Package main is the entry point for the Open Event server.

The binary is also the command manager for maintenance tasks:

	open-event [serve]                 run the HTTP server (default)
	open-event db upgrade              apply pending schema migrations
	open-event db current              print the applied schema version
	open-event db history              list applied migrations
	open-event user create --email E   create an account (--role admin|user)

# Configuration

Every command loads the same configuration. APP_CONFIG selects the profile
(production, development or testing; "config.DevelopmentConfig" style
values are accepted too). A .env file in the working directory, an optional
YAML file (CONFIG_PATH) and environment variables are layered on top:

	APP_CONFIG=development
	HTTP_PORT=5000
	DATABASE_DRIVER=duckdb             # or postgres with DATABASE_URL
	JWT_SECRET=<32+ chars>
	ADMIN_EMAIL=admin@example.com      # seeded on start when set
	ADMIN_PASSWORD=<password>
	GEOCODE_API_KEY=<google key>
	LOG_LEVEL=info
	LOG_FORMAT=json

An invalid configuration is reported and the process exits with status 1.

# Runtime

serve builds the application through internal/app and runs it under a
suture tree:

	RootSupervisor ("open-event")
	├── DataSupervisor ("data-layer")
	│   └── LocationIndexService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

SIGINT or SIGTERM cancel the tree; the HTTP server drains in-flight
requests for up to 10 seconds, then the event bus, geocode store and
database are closed.
*/
package main
