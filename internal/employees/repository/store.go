package repository

import (
	"context"
	"time"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
)

// Store is the document-store contract the employee service writes through.
// Implementations return domain.ErrNotFound (possibly wrapped) for missing ids.
type Store interface {
	// List returns records matching filter, newest CreatedAt first.
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Employee, error)
	Get(ctx context.Context, id string) (*domain.Employee, error)
	// Insert persists e atomically and returns the assigned id.
	Insert(ctx context.Context, e *domain.Employee) (string, error)
	// Patch merges req into the stored record and sets updatedAt to now.
	Patch(ctx context.Context, id string, req domain.UpdateEmployeeRequest, now time.Time) error
	// Delete removes the record, failing with domain.ErrNotFound if it is absent.
	Delete(ctx context.Context, id string) error
}
