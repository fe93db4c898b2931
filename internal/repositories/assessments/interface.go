// Package assessments persists risk check-ins recorded alongside journal
// entries. They share the journal database but not the journal store's
// transactional surface.
package assessments

import (
	"context"

	"github.com/anchorapp/journal/internal/models"
)

// Repository describes CRUD over risk assessments.
type Repository interface {
	// Insert stores a new assessment.
	Insert(ctx context.Context, a *models.RiskAssessment) error

	// List returns assessments newest-first, at most limit (<= 0 for all).
	List(ctx context.Context, limit int) ([]models.RiskAssessment, error)

	// DeleteByID removes one assessment; common.ErrNotFound if absent.
	DeleteByID(ctx context.Context, id string) error
}
