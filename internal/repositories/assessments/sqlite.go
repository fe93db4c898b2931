package assessments

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/anchorapp/journal/internal/common"
	"github.com/anchorapp/journal/internal/models"
)

// SQLiteRepository implements Repository over the shared journal database.
type SQLiteRepository struct {
	db      *sql.DB
	writeMu sync.Mutex
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, a *models.RiskAssessment) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO assessments (id, score, reason, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.Score, a.Reason, a.CreatedAt.UnixNano()); err != nil {
		return &common.PersistenceError{Op: "insert assessment", Err: err}
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.RiskAssessment, error) {
	query := `SELECT id, score, reason, created_at FROM assessments ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &common.PersistenceError{Op: "list assessments", Err: err}
	}
	defer rows.Close()

	var result []models.RiskAssessment
	for rows.Next() {
		var (
			a     models.RiskAssessment
			nanos int64
		)
		if err := rows.Scan(&a.ID, &a.Score, &a.Reason, &nanos); err != nil {
			return nil, &common.PersistenceError{Op: "scan assessment", Err: err}
		}
		a.CreatedAt = time.Unix(0, nanos).UTC()
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &common.PersistenceError{Op: "list assessments", Err: err}
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = ?`, id)
	if err != nil {
		return &common.PersistenceError{Op: "delete assessment", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &common.PersistenceError{Op: "delete assessment", Err: err}
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
