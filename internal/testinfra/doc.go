// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

// Package testinfra starts throwaway containers for integration tests.
//
// Everything here is behind the integration build tag and needs Docker:
//
//	go test -tags integration ./...
//
// Tests call SkipIfNoDocker first so they skip rather than fail on machines
// without a daemon. NewPostgresContainer provides a PostgreSQL server for
// exercising the postgres database driver and its migrations; the default
// unit tests use in-memory DuckDB instead.
package testinfra
