// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

/*
Package supervisor runs the server's long-lived services under suture v4.

The tree has two layers so that a failing background job never takes the
HTTP listener down with it:

	RootSupervisor ("open-event")
	├── DataSupervisor ("data-layer")
	│   └── LocationIndexService (if geocode.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted. Failures are counted per layer with
exponential decay; once the count passes FailureThreshold the layer waits
FailureBackoff before the next restart. Canceling the context passed to
Serve stops every service, each with ShutdownTimeout to return.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewLocationIndexService(index, bus, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, timeout, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Supervisor events (start, stop, panic, backoff) are logged through
sutureslog onto the slog bridge in internal/logging.

The database is not supervised: it is a connection pool owned by the
application and closed after the tree stops.

If shutdown hangs, UnstoppedServiceReport names the services that did not
return in time.
*/
package supervisor
