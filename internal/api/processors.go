// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package api

import (
	"context"

	"github.com/simarsingh24/open-event-server/internal/auth"
	"github.com/simarsingh24/open-event-server/internal/web"
)

// CurrentUserProcessor exposes the signed-in user as "user_email" and
// "user_role". Anonymous requests get neither, so they render empty.
func CurrentUserProcessor() web.ContextProcessor {
	return func(ctx context.Context) (map[string]any, error) {
		claims, ok := auth.ClaimsFromContext(ctx)
		if !ok {
			return nil, nil
		}
		return map[string]any{
			"user_email": claims.Email,
			"user_role":  claims.Role,
		}, nil
	}
}
