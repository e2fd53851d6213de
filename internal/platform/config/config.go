// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Scanner) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Tosho API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"4001"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// JWTSecret signs session tokens (HS256). Startup aborts when it is absent.
	JWTSecret string `env:"JWT_SECRET,required"`

	// SessionTTL is the lifetime of an issued session token.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// LibraryDirectories are the roots scanned for book files.
	LibraryDirectories []string `env:"LIBRARY_DIRECTORIES,required" envSeparator:","`

	// ExternalLookupEnabled toggles metadata provider calls during scans.
	ExternalLookupEnabled bool `env:"EXTERNAL_LOOKUP_ENABLED" envDefault:"false"`

	// GoogleBooksAPIKey enables the Google Books provider when set.
	GoogleBooksAPIKey string `env:"GOOGLE_BOOKS_API_KEY"`

	// ScanInterval is the cadence of the periodic re-scan.
	ScanInterval time.Duration `env:"SCAN_INTERVAL" envDefault:"1h"`

	// ScanWorkers bounds the scan worker pool. Zero means runtime.NumCPU.
	ScanWorkers int `env:"SCAN_WORKERS" envDefault:"0"`

	// WatchEnabled toggles the fsnotify library watcher.
	WatchEnabled bool `env:"WATCH_ENABLED" envDefault:"true"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Library roots must be absolute so that stored filepaths are stable
	// across restarts and working directories.
	for _, dir := range cfg.LibraryDirectories {
		if !filepath.IsAbs(dir) {
			return nil, fmt.Errorf("config: library directory %q is not an absolute path", dir)
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
