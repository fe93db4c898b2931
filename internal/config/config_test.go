package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "journal.db", cfg.DatabasePath)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceInterval)
	assert.True(t, cfg.EncryptionEnabled)
	assert.Equal(t, 50, cfg.HistoryDepth)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("JOURNAL_DATABASE_PATH", "/tmp/x.db")
	t.Setenv("JOURNAL_PAGE_SIZE", "7")
	t.Setenv("JOURNAL_DEBOUNCE_INTERVAL", "150ms")
	t.Setenv("JOURNAL_ENCRYPTION", "false")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)
	assert.Equal(t, 7, cfg.PageSize)
	assert.Equal(t, 150*time.Millisecond, cfg.DebounceInterval)
	assert.False(t, cfg.EncryptionEnabled)
}

func TestParseEnv_MalformedLeavesDefaults(t *testing.T) {
	t.Setenv("JOURNAL_PAGE_SIZE", "not-a-number")
	t.Setenv("JOURNAL_DEBOUNCE_INTERVAL", "soon")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceInterval)
}

func TestJsonConfig_SparseOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"page_size": 5, "debounce_interval": "100ms"}`), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var jc JsonConfig
	require.NoError(t, json.Unmarshal(data, &jc))

	cfg := &Config{}
	cfg.LoadDefaults()

	// only named fields override
	require.NotNil(t, jc.PageSize)
	cfg.PageSize = *jc.PageSize
	require.NotNil(t, jc.DebounceInterval)
	cfg.DebounceInterval = jc.DebounceInterval.Duration

	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 100*time.Millisecond, cfg.DebounceInterval)
	assert.Nil(t, jc.DatabasePath)
	assert.Equal(t, "journal.db", cfg.DatabasePath)
}
