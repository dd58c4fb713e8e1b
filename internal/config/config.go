// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

// Package config loads the server configuration.
//
// Loading order (koanf v2), later layers win:
//  1. .env file in the working directory, if present (does not override the real environment)
//  2. Profile defaults selected by APP_CONFIG (production when unset)
//  3. Optional YAML file (CONFIG_PATH or config.yaml)
//  4. Environment variables
//
// The result is validated before it is returned; any problem is a startup error.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the complete server configuration.
type Config struct {
	Profile    Profile          `koanf:"profile"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Security   SecurityConfig   `koanf:"security"`
	Static     StaticConfig     `koanf:"static"`
	Logging    LoggingConfig    `koanf:"logging"`
	Geocode    GeocodeConfig    `koanf:"geocode"`
	Locations  LocationsConfig  `koanf:"locations"`
	EventTypes EventTypesConfig `koanf:"event_types"`
	Templates  TemplatesConfig  `koanf:"templates"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Debug   bool          `koanf:"debug"`
}

// DatabaseConfig selects and configures the SQL backend.
type DatabaseConfig struct {
	// Driver is duckdb (embedded, default) or postgres.
	Driver string `koanf:"driver" validate:"oneof=duckdb postgres"`
	// DSN is the postgres connection string (DATABASE_URL).
	DSN string `koanf:"dsn"`
	// Path is the DuckDB file; empty means in-memory.
	Path        string `koanf:"path"`
	MaxMemory   string `koanf:"max_memory"`
	Threads     int    `koanf:"threads" validate:"min=0"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

// SecurityConfig holds token auth, CORS and rate limiting settings.
type SecurityConfig struct {
	JWTSecret   string        `koanf:"jwt_secret"`
	TokenExpiry time.Duration `koanf:"token_expiry" validate:"gt=0"`
	// UsernameKey is the request/claim field that identifies a user.
	UsernameKey       string        `koanf:"username_key" validate:"required"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	AdminEmail        string        `koanf:"admin_email" validate:"omitempty,email"`
	AdminPassword     string        `koanf:"admin_password"`
}

// StaticConfig holds static file and upload locations.
type StaticConfig struct {
	URL        string   `koanf:"url" validate:"required,startswith=/,endswith=/"`
	Root       string   `koanf:"root"`
	Dirs       []string `koanf:"dirs"`
	UploadsDir string   `koanf:"uploads_dir"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// GeocodeConfig configures reverse geocoding of event coordinates.
type GeocodeConfig struct {
	// Enabled turns on the background location index.
	Enabled       bool          `koanf:"enabled"`
	BaseURL       string        `koanf:"base_url" validate:"required,url"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimit     float64       `koanf:"rate_limit" validate:"gte=0"`
	Burst         int           `koanf:"burst" validate:"min=1"`
	RetryAttempts uint          `koanf:"retry_attempts" validate:"min=1,max=10"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
	CacheTTL      time.Duration `koanf:"cache_ttl" validate:"gt=0"`
	CacheSize     int           `koanf:"cache_size" validate:"min=0"`
	// StorePath is the BadgerDB directory for persisted lookups; empty disables it.
	StorePath          string        `koanf:"store_path"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures" validate:"min=1"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// LocationsConfig controls the popular-locations index.
type LocationsConfig struct {
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gt=0"`
	Concurrency     int           `koanf:"concurrency" validate:"min=1,max=64"`
	Limit           int           `koanf:"limit" validate:"min=1"`
}

// EventTypesConfig controls the event-types template variable.
type EventTypesConfig struct {
	Limit int `koanf:"limit" validate:"min=1"`
}

// TemplatesConfig controls template rendering.
type TemplatesConfig struct {
	// Dir overrides the embedded templates when set.
	Dir string `koanf:"dir"`
	// StrictUndefined makes a missing template value an execution error
	// instead of rendering empty.
	StrictUndefined bool `koanf:"strict_undefined"`
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// String summarises the configuration without secrets.
func (c *Config) String() string {
	return fmt.Sprintf("profile=%s addr=%s db=%s geocode=%t", c.Profile, c.Addr(), c.Database.Driver, c.Geocode.Enabled)
}
