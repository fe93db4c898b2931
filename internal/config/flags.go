package config

import (
	"flag"
	"os"
	"time"

	"github.com/anchorapp/journal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path to the SQLite database file
//	-p int      page size for visible-list loads
//	-w int      query debounce window in milliseconds
//	-e bool     enable at-rest encryption of entry bodies
//	-k string   path to the file-backed keyring
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-p", "-w", "-e", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the SQLite database file")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "page size for visible-list loads")
	debounceMs := fs.Int("w", int(cfg.DebounceInterval.Milliseconds()), "query debounce window (in milliseconds)")
	fs.BoolVar(&cfg.EncryptionEnabled, "e", cfg.EncryptionEnabled, "enable at-rest encryption")
	fs.StringVar(&cfg.KeyringPath, "k", cfg.KeyringPath, "path to the file-backed keyring")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.DebounceInterval = time.Duration(*debounceMs) * time.Millisecond
}
