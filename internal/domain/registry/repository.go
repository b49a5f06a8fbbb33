package registry

import (
	"context"

	"github.com/google/uuid"

	"github.com/sanable/backend/internal/domain/shared"
)

// StudentFilter defines filtering options for student queries
type StudentFilter struct {
	shared.Filter
	ClassLevel     *ClassLevel // Filter by class level
	AcademicYearID *uuid.UUID  // Filter by enrolled academic year
	Gender         *Gender     // Filter by gender
	Unassigned     bool        // Only students without an academic year
}

// StudentRepository defines the interface for student persistence
type StudentRepository interface {
	// FindByID finds a student by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)

	// FindByIDs finds all students whose IDs are in the given set
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Student, error)

	// FindByIdentityNumber finds a student by government identity number
	FindByIdentityNumber(ctx context.Context, identityNumber string) (*Student, error)

	// FindAll finds students with filtering and pagination
	FindAll(ctx context.Context, filter StudentFilter) ([]Student, error)

	// Search finds students whose name, class level, address or parent
	// phone contains the query, case-insensitively
	Search(ctx context.Context, query string, filter shared.Filter) ([]Student, error)

	// CountSearch counts students matching a search query
	CountSearch(ctx context.Context, query string) (int64, error)

	// Save creates or updates a student
	Save(ctx context.Context, student *Student) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, student *Student) error

	// Delete removes a student and its payments
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts students matching the filter
	Count(ctx context.Context, filter StudentFilter) (int64, error)

	// ReassignYear moves every student enrolled in sourceYearID with the
	// given class level to targetYearID, returning the number moved
	ReassignYear(ctx context.Context, sourceYearID, targetYearID uuid.UUID, classLevel ClassLevel) (int64, error)

	// ClearYear removes the academic year assignment from all students
	// enrolled in the given year
	ClearYear(ctx context.Context, yearID uuid.UUID) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByStudent finds payments for a student, newest first
	FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]Payment, error)

	// CountByStudent counts payments recorded for a student
	CountByStudent(ctx context.Context, studentID uuid.UUID) (int64, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// Delete removes a payment
	Delete(ctx context.Context, id uuid.UUID) error
}

// UnitOfWork runs ledger operations atomically. The repositories passed
// to fn share one transaction; any error rolls the whole unit back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(students StudentRepository, payments PaymentRepository) error) error
}
