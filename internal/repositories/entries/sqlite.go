package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anchorapp/journal/internal/common"
	"github.com/anchorapp/journal/internal/cryptox"
	"github.com/anchorapp/journal/internal/dbx"
	"github.com/anchorapp/journal/internal/models"
)

// SQLiteRepository implements Repository over a local SQLite database.
//
// Entry bodies pass through the configured codec on every read and write,
// so the database file holds ciphertext when encryption is enabled. A
// single writer mutex serializes all mutations; reads run concurrently.
type SQLiteRepository struct {
	db    *sql.DB
	codec cryptox.Codec

	// writeMu serializes mutations. SQLite allows one writer at a time;
	// serializing here keeps write-write conflicts out of the driver.
	writeMu sync.Mutex
}

// NewSQLiteRepository returns a repository bound to db. codec translates
// entry bodies between plaintext and their at-rest representation; pass
// cryptox.Plain{} when encryption is disabled.
func NewSQLiteRepository(db *sql.DB, codec cryptox.Codec) *SQLiteRepository {
	return &SQLiteRepository{db: db, codec: codec}
}

const entryColumns = `id, created_at, updated_at, title, body, body_nonce, body_format, sentiment, tags, locked, version`

// Query returns entries matching the descriptor.
//
// Tag predicates and sorting are always pushed down into SQL. The body text
// predicate and pagination are pushed down too when the codec is
// transparent; with an encrypting codec the text match can only happen
// after decryption, so those rows are filtered and paginated in memory.
// Either way the Query contract holds: a short page means exhaustion.
func (r *SQLiteRepository) Query(ctx context.Context, d Descriptor) ([]models.Entry, error) {
	inMemoryText := d.SearchText != "" && !r.codec.Transparent()

	query, args := r.buildSelect(d, !inMemoryText)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &common.PersistenceError{Op: "query entries", Err: err}
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, &common.PersistenceError{Op: "query entries", Err: err}
	}

	if inMemoryText {
		result = filterText(result, d.SearchText)
		result = slicePage(result, d.Offset, d.Limit)
	}
	return result, nil
}

// Upsert inserts or overwrites by id and stamps UpdatedAt.
func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.Entry) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	e.UpdatedAt = time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = e.UpdatedAt
	}

	blob, nonce, err := r.codec.Seal([]byte(e.Body))
	if err != nil {
		return fmt.Errorf("failed to seal entry body: %w", err)
	}

	tags, err := json.Marshal(models.NormalizeTags(e.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	var sentiment any
	if e.Sentiment != nil {
		sentiment = int64(*e.Sentiment)
	}

	query := `INSERT INTO entries
		(id, created_at, updated_at, title, body, body_nonce, body_format, sentiment, tags, locked, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			title = excluded.title,
			body = excluded.body,
			body_nonce = excluded.body_nonce,
			body_format = excluded.body_format,
			sentiment = excluded.sentiment,
			tags = excluded.tags,
			locked = excluded.locked,
			version = excluded.version`

	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.CreatedAt.UnixNano(), e.UpdatedAt.UnixNano(), e.Title,
		blob, nonce, e.BodyFormat, sentiment, string(tags), e.IsLocked, e.Version)
	if err != nil {
		return &common.PersistenceError{Op: "upsert entry", Err: err}
	}
	return nil
}

// DeleteByIDs removes the given ids inside one transaction; all matched
// rows go or none do.
func (r *SQLiteRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var deleted int64
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `DELETE FROM entries WHERE id IN (` + placeholders(len(ids)) + `)`
		res, err := tx.ExecContext(ctx, query, toAnySlice(ids)...)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, &common.PersistenceError{Op: "delete entries", Err: err}
	}
	return deleted, nil
}

// GetByID returns a single entry or common.ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)

	e, err := r.scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Count returns the number of entries matching the descriptor's
// predicates, ignoring pagination.
func (r *SQLiteRepository) Count(ctx context.Context, d Descriptor) (int64, error) {
	d.Limit = 0
	d.Offset = 0

	if d.SearchText != "" && !r.codec.Transparent() {
		matched, err := r.Query(ctx, d)
		if err != nil {
			return 0, err
		}
		return int64(len(matched)), nil
	}

	where, args := r.buildWhere(d, true)
	query := `SELECT count(*) FROM entries` + where

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, &common.PersistenceError{Op: "count entries", Err: err}
	}
	return n, nil
}

// buildSelect renders the descriptor to SQL. withTextAndPaging controls
// whether the text predicate and LIMIT/OFFSET are pushed down.
func (r *SQLiteRepository) buildSelect(d Descriptor, withTextAndPaging bool) (string, []any) {
	where, args := r.buildWhere(d, withTextAndPaging)

	order := ` ORDER BY created_at DESC, seq DESC`
	if d.Sort == SortCreatedAsc {
		order = ` ORDER BY created_at ASC, seq ASC`
	}

	query := `SELECT ` + entryColumns + ` FROM entries` + where + order

	if withTextAndPaging && (d.Limit > 0 || d.Offset > 0) {
		limit := d.Limit
		if limit <= 0 {
			limit = -1 // SQLite: no limit, offset still applies
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, d.Offset)
	}
	return query, args
}

func (r *SQLiteRepository) buildWhere(d Descriptor, withText bool) (string, []any) {
	var conds []string
	var args []any

	if len(d.Tags) > 0 {
		conds = append(conds,
			`EXISTS (SELECT 1 FROM json_each(entries.tags) WHERE json_each.value IN (`+placeholders(len(d.Tags))+`))`)
		args = append(args, toAnySlice(d.Tags)...)
	}

	if withText && d.SearchText != "" {
		needle := strings.ToLower(d.SearchText)
		conds = append(conds,
			`(instr(lower(title), ?) > 0 OR instr(lower(CAST(body AS TEXT)), ?) > 0)`)
		args = append(args, needle, needle)
	}

	if len(conds) == 0 {
		return "", args
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scanEntry(row scanner) (*models.Entry, error) {
	var (
		e            models.Entry
		createdNanos int64
		updatedNanos int64
		blob         []byte
		nonce        []byte
		sentiment    sql.NullInt64
		tags         string
	)

	err := row.Scan(&e.ID, &createdNanos, &updatedNanos, &e.Title,
		&blob, &nonce, &e.BodyFormat, &sentiment, &tags, &e.IsLocked, &e.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, &common.PersistenceError{Op: "scan entry", Err: err}
	}

	body, err := r.codec.Open(blob, nonce)
	if err != nil {
		// A body that cannot be decrypted must surface, never read as empty.
		return nil, fmt.Errorf("failed to open body of entry %s: %w", e.ID, err)
	}
	e.Body = string(body)

	e.CreatedAt = time.Unix(0, createdNanos).UTC()
	e.UpdatedAt = time.Unix(0, updatedNanos).UTC()

	if sentiment.Valid {
		s := models.Sentiment(sentiment.Int64)
		e.Sentiment = &s
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of entry %s: %w", e.ID, err)
	}
	return &e, nil
}

func filterText(entries []models.Entry, search string) []models.Entry {
	needle := strings.ToLower(search)
	out := entries[:0]
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Title), needle) ||
			strings.Contains(strings.ToLower(e.Body), needle) {
			out = append(out, e)
		}
	}
	return out
}

func slicePage(entries []models.Entry, offset, limit int) []models.Entry {
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
