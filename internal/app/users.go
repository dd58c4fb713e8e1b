// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/simarsingh24/open-event-server/internal/auth"
	"github.com/simarsingh24/open-event-server/internal/database"
	"github.com/simarsingh24/open-event-server/internal/logging"
	"github.com/simarsingh24/open-event-server/internal/models"
	"github.com/simarsingh24/open-event-server/internal/validation"
)

// UserStore is the part of the database user accounts need.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}

// NewUser describes an account to create.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"oneof=admin user"`
}

// CreateUser validates nu, hashes its password and stores it. An existing
// email yields database.ErrConflict.
func CreateUser(ctx context.Context, store UserStore, nu NewUser) (*models.User, error) {
	if nu.Role == "" {
		nu.Role = models.RoleUser
	}
	if verr := validation.ValidateStruct(nu); verr != nil {
		return nil, verr
	}

	hash, err := auth.HashPassword(nu.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{Email: nu.Email, PasswordHash: hash, Role: nu.Role}
	if err := store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SeedAdmin creates the configured admin account unless it already exists.
// Without an admin email it does nothing.
func (a *App) SeedAdmin(ctx context.Context) error {
	sec := a.Config.Security
	if sec.AdminEmail == "" {
		return nil
	}

	_, err := a.DB.UserByEmail(ctx, sec.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	u, err := CreateUser(ctx, a.DB, NewUser{Email: sec.AdminEmail, Password: sec.AdminPassword, Role: models.RoleAdmin})
	if errors.Is(err, database.ErrConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	logging.Info().Str("user_id", u.ID).Str("email", u.Email).Msg("Admin user created")
	return nil
}
