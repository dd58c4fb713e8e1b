// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

/*
Package services provides suture.Service wrappers for long-running server
components.

Each wrapper implements suture v4's context-aware Serve pattern and
fmt.Stringer, so the supervisor can restart it and name it in logs:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server
  - Converts the blocking ListenAndServe into Serve
  - Drains connections for a bounded time on shutdown

Location Index (LocationIndexService):
  - Rebuilds the popular-locations index on start, on an interval and
    whenever the event bus reports changed events
  - A failed rebuild is logged and the previous index keeps serving; the
    service itself only stops when its context ends

Returning ctx.Err() on cancellation tells suture the stop was requested, so
no restart is attempted.
*/
package services
