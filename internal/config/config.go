// Package config loads runtime configuration for the journal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional .env file loaded with godotenv, then environment variables.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
package config

import "time"

// Config holds runtime settings for the journal store and CLI.
//
// Units: DebounceInterval is a time.Duration (e.g., 300*time.Millisecond).
type Config struct {
	// DatabasePath is the SQLite file backing the store.
	DatabasePath string
	// PageSize is the visible-list page size used by LoadMore.
	PageSize int
	// DebounceInterval is the query-engine input collapse window.
	DebounceInterval time.Duration
	// EncryptionEnabled turns on at-rest encryption of entry bodies.
	EncryptionEnabled bool
	// KeyringPath is where the file-backed keyring stores the body key.
	KeyringPath string
	// HistoryDepth bounds the undo/redo history.
	HistoryDepth int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "journal.db"
	c.PageSize = 20
	c.DebounceInterval = 300 * time.Millisecond
	c.EncryptionEnabled = true
	c.KeyringPath = ".journal-keyring"
	c.HistoryDepth = 50
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, JSON (if present) and command-line flags (if
// present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
