package academic

import (
	"time"

	"github.com/sanable/backend/internal/domain/shared"
)

// AcademicYear represents a school year aggregate root. Roster
// membership is not stored here; it is derived from the students'
// academic year assignment, which is the single source of truth.
type AcademicYear struct {
	shared.BaseAggregateRoot
	Year      int       `json:"year"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// NewAcademicYear creates a new academic year. Start and end dates are
// recorded as given; no ordering between them is enforced.
func NewAcademicYear(year int, startDate, endDate time.Time) (*AcademicYear, error) {
	if year <= 0 {
		return nil, shared.NewDomainError("INVALID_YEAR", "Year must be positive")
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Start date is required")
	}
	if endDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "End date is required")
	}

	return &AcademicYear{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Year:              year,
		StartDate:         startDate,
		EndDate:           endDate,
	}, nil
}

// Update replaces the year's fields
func (y *AcademicYear) Update(year int, startDate, endDate time.Time) error {
	if year <= 0 {
		return shared.NewDomainError("INVALID_YEAR", "Year must be positive")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Start and end dates are required")
	}

	y.Year = year
	y.StartDate = startDate
	y.EndDate = endDate
	y.UpdatedAt = time.Now()
	y.IncrementVersion()

	return nil
}
