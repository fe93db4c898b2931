package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/anchorapp/journal/internal/flagx"
	"github.com/anchorapp/journal/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like
// "300ms" or as integer nanoseconds. Pointer fields distinguish "absent"
// from zero values so a sparse file only overrides what it names.
type JsonConfig struct {
	DatabasePath      *string         `json:"database_path"`
	PageSize          *int            `json:"page_size"`
	DebounceInterval  *timex.Duration `json:"debounce_interval"`
	EncryptionEnabled *bool           `json:"encryption_enabled"`
	KeyringPath       *string         `json:"keyring_path"`
	HistoryDepth      *int            `json:"history_depth"`
}

// parseJson overlays Config with values loaded from a JSON file resolved
// via the -c/-config flags. If no file is configured the function returns
// without touching cfg. Read or unmarshal errors panic; the caller may
// recover if desired.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.PageSize != nil {
		cfg.PageSize = *jc.PageSize
	}
	if jc.DebounceInterval != nil {
		cfg.DebounceInterval = time.Duration(jc.DebounceInterval.Duration)
	}
	if jc.EncryptionEnabled != nil {
		cfg.EncryptionEnabled = *jc.EncryptionEnabled
	}
	if jc.KeyringPath != nil {
		cfg.KeyringPath = *jc.KeyringPath
	}
	if jc.HistoryDepth != nil {
		cfg.HistoryDepth = *jc.HistoryDepth
	}
}
