// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/simarsingh24/open-event-server/docs" // registers the swagger spec
	"github.com/simarsingh24/open-event-server/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(defaultDeps()).ExecuteContext(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}
