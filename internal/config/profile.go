// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Profile names a settings profile chosen by APP_CONFIG.
type Profile string

const (
	ProfileProduction  Profile = "production"
	ProfileDevelopment Profile = "development"
	ProfileTesting     Profile = "testing"
)

// AppConfigEnvVar selects the settings profile.
const AppConfigEnvVar = "APP_CONFIG"

// TestingJWTSecret is the fixed signing secret of the testing profile.
const TestingJWTSecret = "testing-secret-do-not-use-in-production"

// ResolveProfile maps an APP_CONFIG value to a profile. Besides the plain
// names it accepts the historical settings-object spellings such as
// "config.ProductionConfig" and "DevelopmentConfig". An empty value selects
// production.
func ResolveProfile(value string) (Profile, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return ProfileProduction, nil
	}
	if i := strings.LastIndexByte(v, '.'); i >= 0 {
		v = v[i+1:]
	}
	v = strings.ToLower(v)
	v = strings.TrimSuffix(v, "config")

	switch Profile(v) {
	case ProfileProduction, ProfileDevelopment, ProfileTesting:
		return Profile(v), nil
	}
	return "", fmt.Errorf("unknown %s value %q: want production, development or testing", AppConfigEnvVar, value)
}

// defaultConfig returns the defaults for a profile. Paths are resolved
// against baseDir, the install location.
func defaultConfig(p Profile, baseDir string) *Config {
	cfg := &Config{
		Profile: p,
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    5000,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:      "duckdb",
			Path:        filepath.Join(baseDir, "data", "open_event.duckdb"),
			MaxMemory:   "1GB",
			AutoMigrate: true,
		},
		Security: SecurityConfig{
			TokenExpiry:     24 * time.Hour,
			UsernameKey:     "email",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Static: StaticConfig{
			URL:        "/static/",
			Root:       "staticfiles",
			Dirs:       []string{filepath.Join(baseDir, "static")},
			UploadsDir: uploadsDir(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Geocode: GeocodeConfig{
			Enabled:            true,
			BaseURL:            "https://maps.googleapis.com/maps/api/geocode/json",
			Timeout:            10 * time.Second,
			RateLimit:          10,
			Burst:              5,
			RetryAttempts:      3,
			RetryDelay:         500 * time.Millisecond,
			CacheTTL:           7 * 24 * time.Hour,
			CacheSize:          10000,
			StorePath:          filepath.Join(baseDir, "data", "geocode"),
			BreakerMaxFailures: 5,
			BreakerTimeout:     time.Minute,
		},
		Locations: LocationsConfig{
			RefreshInterval: 15 * time.Minute,
			Concurrency:     4,
			Limit:           10,
		},
		EventTypes: EventTypesConfig{Limit: 10},
	}

	switch p {
	case ProfileDevelopment:
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
		cfg.Security.RateLimitDisabled = true
		cfg.Locations.RefreshInterval = 5 * time.Minute
	case ProfileTesting:
		cfg.Server.Debug = true
		cfg.Database.Path = ""
		cfg.Security.JWTSecret = TestingJWTSecret
		cfg.Security.RateLimitDisabled = true
		cfg.Logging.Level = "warn"
		cfg.Geocode.Enabled = false
		cfg.Geocode.StorePath = ""
	}
	return cfg
}

// uploadsDir is <cwd>/static/, matching where uploaded files were always written.
func uploadsDir() string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return filepath.Join(wd, "static") + string(filepath.Separator)
}
