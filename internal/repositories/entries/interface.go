package entries

import (
	"context"

	"github.com/anchorapp/journal/internal/models"
)

// Sort fixes the order of query results.
type Sort int

const (
	// SortCreatedDesc is newest-first, the default presentation order.
	SortCreatedDesc Sort = iota
	// SortCreatedAsc is oldest-first.
	SortCreatedAsc
)

// Descriptor is a structured query specification: a conjunction of optional
// predicates plus sort and pagination. Zero-value predicates are
// unconstrained.
type Descriptor struct {
	// SearchText, when non-empty, requires a case-insensitive substring
	// match over title or body.
	SearchText string

	// Tags, when non-empty, requires the entry to carry at least one of
	// the given normalized tags.
	Tags []string

	// Sort orders results by CreatedAt. Entries with identical timestamps
	// retain relative insertion order (stable).
	Sort Sort

	// Limit and Offset implement pagination. Limit <= 0 means no limit.
	Limit  int
	Offset int
}

// Repository describes durable CRUD and descriptor-based queries over
// journal entries. Implementations must be safe for single-writer /
// multiple-reader concurrent access: mutations are serialized, a failed
// write rolls back with no partial state visible to readers.
type Repository interface {
	// Query returns entries matching the descriptor. It returns fewer
	// than Limit results only when the underlying data is exhausted;
	// callers use that as the page-exhaustion signal.
	Query(ctx context.Context, d Descriptor) ([]models.Entry, error)

	// Upsert inserts a new entry or overwrites the record with the same
	// id, stamping UpdatedAt.
	Upsert(ctx context.Context, e *models.Entry) error

	// DeleteByIDs removes all entries whose id is in ids, atomically:
	// either every matched record is removed or none are. It returns the
	// number of records actually deleted.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)

	// GetByID returns a single entry or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Entry, error)

	// Count returns the number of entries matching the descriptor's
	// predicates, ignoring Limit and Offset.
	Count(ctx context.Context, d Descriptor) (int64, error)
}
