// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simarsingh24/open-event-server/internal/config"
)

// Claims are the token claims. Identity is the user's primary key; Email and
// Role are carried so that pages and policy checks need no lookup.
type Claims struct {
	Identity string `json:"identity"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token creation and validation
type JWTManager struct {
	secret      []byte
	expiry      time.Duration
	usernameKey string
	now         func() time.Time
}

// NewJWTManager creates a token manager from the security configuration.
//
// Tokens are signed with HS256 and expire after TokenExpiry (24 hours by
// default). UsernameKey names the login field that identifies a user.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	expiry := cfg.TokenExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	key := cfg.UsernameKey
	if key == "" {
		key = "email"
	}

	return &JWTManager{
		secret:      []byte(cfg.JWTSecret),
		expiry:      expiry,
		usernameKey: key,
		now:         time.Now,
	}, nil
}

// UsernameKey is the login request field holding the user name.
func (m *JWTManager) UsernameKey() string {
	return m.usernameKey
}

// Expiry is the token lifetime.
func (m *JWTManager) Expiry() time.Duration {
	return m.expiry
}

// GenerateToken issues a signed token for identity.
func (m *JWTManager) GenerateToken(identity *Identity) (string, error) {
	now := m.now()
	claims := &Claims{
		Identity: identity.ID,
		Email:    identity.Email,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken verifies signature, algorithm and expiry and returns the claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Identity == "" {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
