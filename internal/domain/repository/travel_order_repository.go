package repository

import (
	"context"
	"time"

	"github.com/bapperida/siperjadin/internal/domain/entity"
)

// TravelOrderFilter narrows List queries. Zero values mean "no filter".
type TravelOrderFilter struct {
	Status       string
	DocumentType string
}

// TravelOrderRepository is the persistence port for travel orders.
// Implementations return (nil, nil) from GetByID when the record does not
// exist; callers translate that into domain.ErrNotFound at the boundary
// they care about.
type TravelOrderRepository interface {
	// Create inserts the document. A duplicate document_number surfaces as
	// domain.ErrConflict so the caller can regenerate the number and retry.
	Create(ctx context.Context, order *entity.TravelOrder) error

	// GetByID loads one document with creator/approver names joined.
	GetByID(ctx context.Context, id string) (*entity.TravelOrder, error)

	// List returns a newest-first page plus the total row count for the
	// filter.
	List(ctx context.Context, filter TravelOrderFilter, limit, offset int) ([]*entity.TravelOrder, int, error)

	// Update persists mutable fields and the status, guarded by the status
	// the decision was computed from: when the row exists but its status no
	// longer matches fromStatus, a concurrent transition won and the call
	// returns domain.ErrConflict. A missing row returns domain.ErrNotFound.
	Update(ctx context.Context, order *entity.TravelOrder, fromStatus string) error

	// Delete removes the document. domain.ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// CountByTypeAndMonth counts documents of a type created within a
	// calendar month; feeds the document number sequence.
	CountByTypeAndMonth(ctx context.Context, documentType string, year int, month time.Month) (int, error)

	// CountByStatus returns document counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int, error)
}
