// Package cli implements the interactive journal shell: a small REPL over
// the journal store, the query engine and the risk assessment log.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/anchorapp/journal/internal/classifier"
	"github.com/anchorapp/journal/internal/common"
	"github.com/anchorapp/journal/internal/config"
	"github.com/anchorapp/journal/internal/cryptox"
	"github.com/anchorapp/journal/internal/journal"
	"github.com/anchorapp/journal/internal/keyring"
	"github.com/anchorapp/journal/internal/logging"
	"github.com/anchorapp/journal/internal/query"
	"github.com/anchorapp/journal/internal/repositories/assessments"
	"github.com/anchorapp/journal/internal/repositories/entries"
	"github.com/anchorapp/journal/internal/storage"

	_ "modernc.org/sqlite"
)

// App wires the journal store, repositories and query engine behind an
// interactive shell.
type App struct {
	cfg   *config.Config
	log   logging.Logger
	db    *sql.DB
	store *journal.Store
	risks assessments.Repository

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the database, provisions the body cipher when encryption is
// enabled, and wires the store. The caller owns the returned App's Close.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	out := io.Writer(os.Stdout)

	var codec cryptox.Codec = cryptox.Plain{}
	if cfg.EncryptionEnabled {
		kr := keyring.NewFile(cfg.KeyringPath)
		pass, err := GetPassphrase(out)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		cipher, err := cryptox.ProvisionWithPassphrase(kr, pass)
		common.WipeByteArray(pass)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to provision body cipher: %w", err)
		}
		codec = cryptox.NewSealed(cipher)
	}

	repo := entries.NewSQLiteRepository(db, codec)
	eng := query.NewEngine(cfg.DebounceInterval)
	store := journal.NewStore(repo, classifier.NewKeyword(), eng, log, journal.Options{
		PageSize:     cfg.PageSize,
		HistoryDepth: cfg.HistoryDepth,
	})

	// a settled filter change reloads the list from page zero
	eng.OnChange(func(entries.Descriptor) {
		if err := store.Refresh(ctx); err != nil {
			log.Warn(ctx, "refresh after filter change failed", "error", err)
		}
	})

	return &App{
		cfg:    cfg,
		log:    log,
		db:     db,
		store:  store,
		risks:  assessments.NewSQLiteRepository(db),
		reader: bufio.NewReader(os.Stdin),
		out:    out,
	}, nil
}

// Store exposes the journal store, mainly for tests.
func (a *App) Store() *journal.Store { return a.store }

// Close releases the query engine and the database handle.
func (a *App) Close() error {
	a.store.Engine().Close()
	return a.db.Close()
}

// Run loads the first page and enters the command loop until EOF or an
// exit command.
func (a *App) Run(ctx context.Context) error {
	if err := a.store.Refresh(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: initial load failed: %v\n", err)
	}

	fmt.Fprintln(a.out, "journal (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprint(a.out, "journal > ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if quit := a.dispatch(ctx, scanner.Text()); quit {
			return nil
		}
	}
}
