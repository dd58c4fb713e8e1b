// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/simarsingh24/open-event-server/internal/database"
	"github.com/simarsingh24/open-event-server/internal/models"
)

var (
	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownIdentity means a valid token names a user that no longer exists.
	ErrUnknownIdentity = errors.New("unknown identity")
)

// Identity is the authenticated principal.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserStore is satisfied by *database.DB.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator checks credentials against the user store.
type Authenticator struct {
	users UserStore
	// dummyHash is compared when the user does not exist so both failure
	// paths cost one bcrypt comparison.
	dummyHash string
}

// NewAuthenticator creates an Authenticator over users.
func NewAuthenticator(users UserStore) (*Authenticator, error) {
	dummy, err := HashPassword("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &Authenticator{users: users, dummyHash: dummy}, nil
}

// Authenticate returns the identity for email and password.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	user, err := a.users.UserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		CheckPassword(a.dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return identityOf(user), nil
}

// Identity resolves token claims to the current user record.
func (a *Authenticator) Identity(ctx context.Context, claims *Claims) (*Identity, error) {
	user, err := a.users.UserByID(ctx, claims.Identity)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUnknownIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return identityOf(user), nil
}

func identityOf(u *models.User) *Identity {
	return &Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}
