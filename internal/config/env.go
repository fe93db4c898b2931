package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment,
// after first loading a local .env file if one exists. Missing or
// malformed variables leave the current value untouched.
//
// Supported variables:
//
//	JOURNAL_DATABASE_PATH      string
//	JOURNAL_PAGE_SIZE          int
//	JOURNAL_DEBOUNCE_INTERVAL  duration ("300ms")
//	JOURNAL_ENCRYPTION         bool
//	JOURNAL_KEYRING_PATH       string
//	JOURNAL_HISTORY_DEPTH      int
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("JOURNAL_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("JOURNAL_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("JOURNAL_DEBOUNCE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.DebounceInterval = d
		}
	}
	if v := os.Getenv("JOURNAL_ENCRYPTION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EncryptionEnabled = b
		}
	}
	if v := os.Getenv("JOURNAL_KEYRING_PATH"); v != "" {
		cfg.KeyringPath = v
	}
	if v := os.Getenv("JOURNAL_HISTORY_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryDepth = n
		}
	}
}
