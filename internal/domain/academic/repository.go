package academic

import (
	"context"

	"github.com/google/uuid"

	"github.com/sanable/backend/internal/domain/shared"
)

// AcademicYearRepository defines the interface for academic year persistence
type AcademicYearRepository interface {
	// FindByID finds an academic year by ID
	FindByID(ctx context.Context, id uuid.UUID) (*AcademicYear, error)

	// FindByYear finds an academic year by its calendar year
	FindByYear(ctx context.Context, year int) (*AcademicYear, error)

	// FindAll finds academic years with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]AcademicYear, error)

	// Save creates or updates an academic year
	Save(ctx context.Context, year *AcademicYear) error

	// Delete removes an academic year
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts academic years
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
