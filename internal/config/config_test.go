// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolveProfile(t *testing.T) {
	tests := []struct {
		input   string
		want    Profile
		wantErr bool
	}{
		{"", ProfileProduction, false},
		{"production", ProfileProduction, false},
		{"config.ProductionConfig", ProfileProduction, false},
		{"ProductionConfig", ProfileProduction, false},
		{"config.DevelopmentConfig", ProfileDevelopment, false},
		{"  Testing ", ProfileTesting, false},
		{"config.TestingConfig", ProfileTesting, false},
		{"config.StagingConfig", "", true},
		{"nonsense", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ResolveProfile(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveProfile(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveProfile(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ResolveProfile(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig(ProfileProduction, "/srv/open-event")

	if cfg.Security.TokenExpiry != 24*time.Hour {
		t.Errorf("TokenExpiry = %v, want 24h", cfg.Security.TokenExpiry)
	}
	if cfg.Security.UsernameKey != "email" {
		t.Errorf("UsernameKey = %q, want email", cfg.Security.UsernameKey)
	}
	if cfg.Static.URL != "/static/" {
		t.Errorf("Static.URL = %q, want /static/", cfg.Static.URL)
	}
	if cfg.Static.Root != "staticfiles" {
		t.Errorf("Static.Root = %q, want staticfiles", cfg.Static.Root)
	}
	if len(cfg.Static.Dirs) != 1 || cfg.Static.Dirs[0] != filepath.Join("/srv/open-event", "static") {
		t.Errorf("Static.Dirs = %v, want [/srv/open-event/static]", cfg.Static.Dirs)
	}
	if !strings.HasSuffix(cfg.Static.UploadsDir, "static"+string(filepath.Separator)) {
		t.Errorf("Static.UploadsDir = %q, want <cwd>/static/", cfg.Static.UploadsDir)
	}
	if cfg.Locations.Limit != 10 || cfg.EventTypes.Limit != 10 {
		t.Errorf("limits = %d/%d, want 10/10", cfg.Locations.Limit, cfg.EventTypes.Limit)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("logging = %s/%s, want json/info", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestDefaultConfig_Profiles(t *testing.T) {
	dev := defaultConfig(ProfileDevelopment, ".")
	if dev.Logging.Format != "console" || !dev.Server.Debug {
		t.Errorf("development profile should enable console logging and debug")
	}

	tst := defaultConfig(ProfileTesting, ".")
	if tst.Database.Path != "" {
		t.Errorf("testing profile should use in-memory duckdb, got %q", tst.Database.Path)
	}
	if tst.Geocode.Enabled {
		t.Error("testing profile should disable background geocoding")
	}
	if tst.Security.JWTSecret != TestingJWTSecret {
		t.Error("testing profile should carry the fixed test secret")
	}
}

func TestLoadProfile_Testing(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "8088")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadProfile("config.TestingConfig")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if cfg.Profile != ProfileTesting {
		t.Errorf("Profile = %q, want testing", cfg.Profile)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("Server.Port = %d, want 8088", cfg.Server.Port)
	}
	want := []string{"https://a.example", "https://b.example"}
	if strings.Join(cfg.Security.CORSOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Addr() != "0.0.0.0:8088" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadProfile_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 7000\nlocations:\n  limit: 5\n  refresh_interval: 2m\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOCATIONS_LIMIT", "7")

	cfg, err := LoadProfile("testing")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 from yaml", cfg.Server.Port)
	}
	if cfg.Locations.Limit != 7 {
		t.Errorf("Locations.Limit = %d, want 7 from env", cfg.Locations.Limit)
	}
	if cfg.Locations.RefreshInterval != 2*time.Minute {
		t.Errorf("RefreshInterval = %v, want 2m", cfg.Locations.RefreshInterval)
	}
}

func TestLoadProfile_Errors(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	tests := []struct {
		name      string
		appConfig string
		env       map[string]string
		wantErr   string
	}{
		{
			name:      "unknown profile",
			appConfig: "config.BogusConfig",
			wantErr:   "unknown APP_CONFIG",
		},
		{
			name:      "production without secret",
			appConfig: "",
			wantErr:   "JWT_SECRET is required",
		},
		{
			name:      "production with short secret",
			appConfig: "production",
			env:       map[string]string{"JWT_SECRET": "short"},
			wantErr:   "at least 32 characters",
		},
		{
			name:      "postgres without dsn",
			appConfig: "testing",
			env:       map[string]string{"DATABASE_DRIVER": "postgres"},
			wantErr:   "DATABASE_URL is required",
		},
		{
			name:      "bad driver",
			appConfig: "testing",
			env:       map[string]string{"DATABASE_DRIVER": "oracle"},
			wantErr:   "database.driver",
		},
		{
			name:      "admin email without password",
			appConfig: "testing",
			env:       map[string]string{"ADMIN_EMAIL": "admin@example.com"},
			wantErr:   "must be set together",
		},
		{
			name:      "bad log level",
			appConfig: "testing",
			env:       map[string]string{"LOG_LEVEL": "chatty"},
			wantErr:   "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadProfile(tt.appConfig)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("OPEN_EVENT_DOTENV_PROBE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPEN_EVENT_DOTENV_PROBE", "")
	os.Unsetenv("OPEN_EVENT_DOTENV_PROBE")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
	if got := os.Getenv("OPEN_EVENT_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("OPEN_EVENT_DOTENV_PROBE = %q, want from-file", got)
	}

	if err := loadDotEnv(filepath.Join(dir, "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}
