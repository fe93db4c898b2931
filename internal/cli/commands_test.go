package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anchorapp/journal/internal/classifier"
	"github.com/anchorapp/journal/internal/cryptox"
	"github.com/anchorapp/journal/internal/journal"
	"github.com/anchorapp/journal/internal/logging"
	"github.com/anchorapp/journal/internal/query"
	"github.com/anchorapp/journal/internal/repositories/assessments"
	"github.com/anchorapp/journal/internal/repositories/entries"
	"github.com/anchorapp/journal/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var cliDBSeq int

// newTestApp wires an App over an in-memory database, with input scripted
// from the given string and output captured in the returned buffer.
func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()
	cliDBSeq++
	ctx := context.Background()

	db, err := storage.Open(ctx, fmt.Sprintf("file:cli%d?mode=memory&cache=shared", cliDBSeq))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	repo := entries.NewSQLiteRepository(db, cryptox.Plain{})
	eng := query.NewEngine(10 * time.Millisecond)
	t.Cleanup(eng.Close)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	store := journal.NewStore(repo, classifier.NewKeyword(), eng, log, journal.Options{PageSize: 5})
	eng.OnChange(func(entries.Descriptor) { _ = store.Refresh(ctx) })

	var out bytes.Buffer
	return &App{
		log:    log,
		db:     db,
		store:  store,
		risks:  assessments.NewSQLiteRepository(db),
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    &out,
	}, &out
}

func TestDispatch_AddThenList(t *testing.T) {
	// add prompts: title, body lines, blank terminator, tags
	app, out := newTestApp(t, "My Day\nI feel grateful and calm\n\ngrateful, calm\n")
	ctx := context.Background()

	require.False(t, app.dispatch(ctx, "add"))
	assert.Contains(t, out.String(), "Sentiment: positive")

	out.Reset()
	app.dispatch(ctx, "list")
	got := out.String()
	assert.Contains(t, got, "My Day")
	assert.Contains(t, got, "positive")
	assert.Contains(t, got, "calm,grateful")
}

func TestDispatch_SearchFiltersList(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()

	_, err := app.store.Add(ctx, "Gratitude", "thankful for today", nil)
	require.NoError(t, err)
	_, err = app.store.Add(ctx, "Work Notes", "meetings all day", nil)
	require.NoError(t, err)

	app.dispatch(ctx, "search thankful")
	got := out.String()
	assert.Contains(t, got, "Gratitude")
	assert.NotContains(t, got, "Work Notes")

	out.Reset()
	app.dispatch(ctx, "search")
	assert.Contains(t, out.String(), "Work Notes")
}

func TestDispatch_DeleteAndUndo(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()

	_, err := app.store.Add(ctx, "Keep", "body", nil)
	require.NoError(t, err)
	_, err = app.store.Add(ctx, "Drop", "body", nil)
	require.NoError(t, err)

	// newest-first: entry 1 is "Drop"
	app.dispatch(ctx, "delete 1")
	assert.Contains(t, out.String(), "Deleted 1 entries")
	require.Len(t, app.store.Visible(), 1)

	out.Reset()
	app.dispatch(ctx, "undo")
	assert.Contains(t, out.String(), "Undone.")
	assert.Len(t, app.store.Visible(), 2)
}

func TestDispatch_DeleteBadIndex(t *testing.T) {
	app, out := newTestApp(t, "")
	app.dispatch(context.Background(), "delete 7")
	assert.Contains(t, out.String(), "run 'list' first")
}

func TestDispatch_Export(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()

	_, err := app.store.Add(ctx, "t", "body", nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "journal.json")
	app.dispatch(ctx, "export "+path)
	assert.Contains(t, out.String(), "Exported 1 entries")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"body": "body"`)
}

func TestDispatch_AssessAndRisks(t *testing.T) {
	// assess prompts: score, reason
	app, out := newTestApp(t, "8\nrough week\n")
	ctx := context.Background()

	app.dispatch(ctx, "assess")
	got := out.String()
	assert.Contains(t, got, "Current level: high")
	assert.Contains(t, got, "988")

	out.Reset()
	app.dispatch(ctx, "risks")
	got = out.String()
	assert.Contains(t, got, "8 (high)")
	assert.Contains(t, got, "rough week")
}

func TestDispatch_AssessRejectsBadScore(t *testing.T) {
	app, out := newTestApp(t, "eleven\n")
	app.dispatch(context.Background(), "assess")
	assert.Contains(t, out.String(), "between 1 and 10")
}

func TestDispatch_Seed(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()

	app.dispatch(ctx, "seed 4")
	assert.Contains(t, out.String(), "Seeded 4 demo entries")
	assert.Len(t, app.store.Visible(), 4)
}

func TestDispatch_UnknownAndExit(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()

	assert.False(t, app.dispatch(ctx, "bogus"))
	assert.Contains(t, out.String(), "Unknown command: bogus")

	assert.True(t, app.dispatch(ctx, "exit"))
	assert.False(t, app.dispatch(ctx, "   "))
}
