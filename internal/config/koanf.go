// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/open-event/config.yaml",
}

const (
	// ConfigPathEnvVar overrides the YAML config file location.
	ConfigPathEnvVar = "CONFIG_PATH"
	// BaseDirEnvVar overrides the install location used for relative paths.
	BaseDirEnvVar = "BASE_DIR"
	// DotEnvFile is loaded from the working directory when present.
	DotEnvFile = ".env"
)

// Load reads the configuration using APP_CONFIG from the environment.
func Load() (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	return LoadProfile(os.Getenv(AppConfigEnvVar))
}

// LoadProfile reads the configuration for an explicit APP_CONFIG value.
func LoadProfile(appConfig string) (*Config, error) {
	profile, err := ResolveProfile(appConfig)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(profile, baseDir()), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load %s defaults: %w", profile, err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Profile = profile

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads KEY=VALUE pairs from path without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func baseDir() string {
	if dir := os.Getenv(BaseDirEnvVar); dir != "" {
		return dir
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	return "."
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"static.dirs",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variables to koanf paths. Variables that are
// not listed are ignored so unrelated environment does not leak in.
var envMappings = map[string]string{
	"http_host":    "server.host",
	"http_port":    "server.port",
	"port":         "server.port",
	"http_timeout": "server.timeout",
	"debug":        "server.debug",

	"database_driver":       "database.driver",
	"database_url":          "database.dsn",
	"duckdb_path":           "database.path",
	"duckdb_max_memory":     "database.max_memory",
	"duckdb_threads":        "database.threads",
	"database_auto_migrate": "database.auto_migrate",

	"jwt_secret":          "security.jwt_secret",
	"secret_key":          "security.jwt_secret",
	"jwt_expiration":      "security.token_expiry",
	"jwt_username_key":    "security.username_key",
	"cors_origins":        "security.cors_origins",
	"rate_limit_reqs":     "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",
	"admin_email":         "security.admin_email",
	"admin_password":      "security.admin_password",

	"static_url":     "static.url",
	"static_root":    "static.root",
	"static_dirs":    "static.dirs",
	"uploads_folder": "static.uploads_dir",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"geocode_enabled":              "geocode.enabled",
	"geocode_base_url":             "geocode.base_url",
	"google_maps_api_key":          "geocode.api_key",
	"geocode_api_key":              "geocode.api_key",
	"geocode_timeout":              "geocode.timeout",
	"geocode_rate_limit":           "geocode.rate_limit",
	"geocode_burst":                "geocode.burst",
	"geocode_retry_attempts":       "geocode.retry_attempts",
	"geocode_retry_delay":          "geocode.retry_delay",
	"geocode_cache_ttl":            "geocode.cache_ttl",
	"geocode_cache_size":           "geocode.cache_size",
	"geocode_store_path":           "geocode.store_path",
	"geocode_breaker_max_failures": "geocode.breaker_max_failures",
	"geocode_breaker_timeout":      "geocode.breaker_timeout",

	"locations_refresh_interval": "locations.refresh_interval",
	"locations_concurrency":      "locations.concurrency",
	"locations_limit":            "locations.limit",
	"event_types_limit":          "event_types.limit",

	"templates_dir":              "templates.dir",
	"templates_strict_undefined": "templates.strict_undefined",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
