package entries

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/anchorapp/journal/internal/common"
	"github.com/anchorapp/journal/internal/cryptox"
	"github.com/anchorapp/journal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var dbSeq int

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dbSeq++
	db, err := sql.Open("sqlite", fmt.Sprintf("file:entries%d?mode=memory&cache=shared", dbSeq))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE entries (
  seq         INTEGER PRIMARY KEY AUTOINCREMENT,
  id          TEXT NOT NULL UNIQUE,
  created_at  INTEGER NOT NULL,
  updated_at  INTEGER NOT NULL,
  title       TEXT NOT NULL DEFAULT '',
  body        BLOB NOT NULL,
  body_nonce  BLOB,
  body_format TEXT NOT NULL DEFAULT 'plain',
  sentiment   INTEGER,
  tags        TEXT NOT NULL DEFAULT '[]',
  locked      INTEGER NOT NULL DEFAULT 0,
  version     INTEGER NOT NULL DEFAULT 1
);
`)
	require.NoError(t, err)
	return db
}

func plainRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	return NewSQLiteRepository(setupDB(t), cryptox.Plain{})
}

func sealedRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()
	db := setupDB(t)
	c, err := cryptox.NewCipher(make([]byte, 32))
	require.NoError(t, err)
	return NewSQLiteRepository(db, cryptox.NewSealed(c)), db
}

func mkEntry(id, title, body string, createdAt time.Time, tags ...string) *models.Entry {
	return &models.Entry{
		ID:         id,
		CreatedAt:  createdAt,
		Title:      title,
		Body:       body,
		BodyFormat: models.BodyFormatPlain,
		Tags:       tags,
		Version:    1,
	}
}

func TestUpsert_InsertAndGetByID(t *testing.T) {
	r := plainRepo(t)
	ctx := context.Background()

	s := models.SentimentPositive
	e := mkEntry("id1", "Morning Reflections", "I feel grateful and calm today", time.Now().UTC(), "Grateful", "grateful", " Positive ")
	e.Sentiment = &s
	e.IsLocked = true

	require.NoError(t, r.Upsert(ctx, e))
	assert.False(t, e.UpdatedAt.IsZero())

	got, err := r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "Morning Reflections", got.Title)
	assert.Equal(t, "I feel grateful and calm today", got.Body)
	assert.Equal(t, models.BodyFormatPlain, got.BodyFormat)
	assert.Equal(t, []string{"grateful", "positive"}, got.Tags)
	assert.True(t, got.IsLocked)
	assert.Equal(t, int64(1), got.Version)
	require.NotNil(t, got.Sentiment)
	assert.Equal(t, models.SentimentPositive, *got.Sentiment)
	assert.False(t, got.CreatedAt.After(got.UpdatedAt))
}

func TestUpsert_OverwritesByID(t *testing.T) {
	r := plainRepo(t)
	ctx := context.Background()

	e := mkEntry("id1", "v1", "body one", time.Now().UTC())
	require.NoError(t, r.Upsert(ctx, e))

	e.Title = "v2"
	e.Body = "body two"
	e.Version = 2
	require.NoError(t, r.Upsert(ctx, e))

	got, err := r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)
	assert.Equal(t, "body two", got.Body)
	assert.Equal(t, int64(2), got.Version)

	n, err := r.Count(ctx, Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGetByID_NotFound(t *testing.T) {
	r := plainRepo(t)
	_, err := r.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func seedEntries(t *testing.T, r *SQLiteRepository, n int, base time.Time) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		e := mkEntry(fmt.Sprintf("id%02d", i), fmt.Sprintf("entry %d", i), "body", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, r.Upsert(ctx, e))
	}
}

func TestQuery_PaginationAndSort(t *testing.T) {
	r := plainRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedEntries(t, r, 5, base)

	// newest first
	page, err := r.Query(ctx, Descriptor{Sort: SortCreatedDesc, Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "id04", page[0].ID)
	assert.Equal(t, "id03", page[1].ID)

	page, err = r.Query(ctx, Descriptor{Sort: SortCreatedDesc, Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, page, 1) // short page: exhaustion signal
	assert.Equal(t, "id00", page[0].ID)

	// ascending
	page, err = r.Query(ctx, Descriptor{Sort: SortCreatedAsc, Limit: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "id00", page[0].ID)
}

func TestQuery_StableTieBreakOnEqualTimestamps(t *testing.T) {
	r := plainRepo(t)
	ctx := context.Background()
	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.Upsert(ctx, mkEntry(id, id, "body", ts)))
	}

	got, err := r.Query(ctx, Descriptor{Sort: SortCreatedDesc})
	require.NoError(t, err)
	require.Len(t, got, 3)
	// equal timestamps keep insertion order, newest insertion first
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "a", got[2].ID)
}

func TestQuery_TextSearchCaseInsensitive(t *testing.T) {
	r := plainRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.Upsert(ctx, mkEntry("a", "Feeling Grateful Today", "a good day", now)))
	require.NoError(t, r.Upsert(ctx, mkEntry("b", "work notes", "I am GRATEFUL for my team", now.Add(time.Minute))))
	require.NoError(t, r.Upsert(ctx, mkEntry("c", "other", "nothing here", now.Add(2*time.Minute))))

	got, err := r.Query(ctx, Descriptor{SearchText: "grateful"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestQuery_TagMembership(t *testing.T) {
	r := plainRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.Upsert(ctx, mkEntry("a", "", "b1", now, "work", "anxiety")))
	require.NoError(t, r.Upsert(ctx, mkEntry("b", "", "b2", now.Add(time.Minute), "family")))
	require.NoError(t, r.Upsert(ctx, mkEntry("c", "", "b3", now.Add(2*time.Minute))))

	got, err := r.Query(ctx, Descriptor{Tags: []string{"work", "family"}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = r.Query(ctx, Descriptor{Tags: []string{"nope"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuery_ConjunctionOfPredicates(t *testing.T) {
	r := plainRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.Upsert(ctx, mkEntry("a", "grateful", "b1", now, "work")))
	require.NoError(t, r.Upsert(ctx, mkEntry("b", "grateful", "b2", now, "family")))

	got, err := r.Query(ctx, Descriptor{SearchText: "grateful", Tags: []string{"work"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestDeleteByIDs(t *testing.T) {
	r := plainRepo(t)
	ctx := context.Background()
	seedEntries(t, r, 3, time.Now().UTC())

	n, err := r.DeleteByIDs(ctx, []string{"id00", "id02", "missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := r.Query(ctx, Descriptor{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "id01", left[0].ID)

	n, err = r.DeleteByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEncrypted_BodyAtRestAndRoundTrip(t *testing.T) {
	r, db := sealedRepo(t)
	ctx := context.Background()

	e := mkEntry("id1", "title", "very private thoughts", time.Now().UTC())
	require.NoError(t, r.Upsert(ctx, e))

	// the database file never sees plaintext
	var blob, nonce []byte
	require.NoError(t, db.QueryRow(`SELECT body, body_nonce FROM entries WHERE id='id1'`).Scan(&blob, &nonce))
	assert.NotContains(t, string(blob), "private")
	assert.Len(t, nonce, 12)

	got, err := r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "very private thoughts", got.Body)
}

func TestEncrypted_TextSearchAndPagination(t *testing.T) {
	r, _ := sealedRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		body := "I feel grateful"
		if i%2 == 1 {
			body = "nothing notable"
		}
		e := mkEntry(fmt.Sprintf("id%d", i), "t", body, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, r.Upsert(ctx, e))
	}

	got, err := r.Query(ctx, Descriptor{SearchText: "GRATEFUL", Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id2", got[0].ID)

	got, err = r.Query(ctx, Descriptor{SearchText: "grateful", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id0", got[0].ID)

	n, err := r.Count(ctx, Descriptor{SearchText: "grateful"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestEncrypted_TamperSurfacesCryptoError(t *testing.T) {
	r, db := sealedRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, mkEntry("id1", "t", "body", time.Now().UTC())))

	_, err := db.Exec(`UPDATE entries SET body = x'deadbeef' WHERE id='id1'`)
	require.NoError(t, err)

	_, err = r.GetByID(ctx, "id1")
	require.ErrorIs(t, err, common.ErrTampered)
}

func TestCount_UnconstrainedAndFiltered(t *testing.T) {
	r := plainRepo(t)
	ctx := context.Background()
	seedEntries(t, r, 4, time.Now().UTC())

	n, err := r.Count(ctx, Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = r.Count(ctx, Descriptor{SearchText: "entry 1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
