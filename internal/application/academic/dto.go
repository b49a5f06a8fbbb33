package academic

import (
	"time"

	"github.com/google/uuid"

	"github.com/sanable/backend/internal/domain/academic"
)

// CreateAcademicYearRequest represents a request to create an academic year
type CreateAcademicYearRequest struct {
	Year      int       `json:"year" binding:"required,min=1"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// UpdateAcademicYearRequest represents a request to update an academic year
type UpdateAcademicYearRequest struct {
	Year      *int       `json:"year" binding:"omitempty,min=1"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// AcademicYearResponse represents an academic year in API responses
type AcademicYearResponse struct {
	ID        uuid.UUID `json:"id"`
	Year      int       `json:"year"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ModifyRosterRequest represents a request to add or remove students
type ModifyRosterRequest struct {
	StudentIDs []uuid.UUID `json:"student_ids" binding:"required,min=1"`
}

// SkippedStudent describes a student the roster operation did not touch
type SkippedStudent struct {
	StudentID uuid.UUID `json:"student_id"`
	Reason    string    `json:"reason"`
}

// RosterChangeResult reports which students a roster operation applied
// to and which it skipped. Skips never fail the whole request.
type RosterChangeResult struct {
	Applied []uuid.UUID      `json:"applied"`
	Skipped []SkippedStudent `json:"skipped"`
	Message string           `json:"message,omitempty"`
}

// PromoteRequest represents a request to move a class level between years
type PromoteRequest struct {
	SourceYearID uuid.UUID `json:"source_year_id" binding:"required"`
	TargetYearID uuid.UUID `json:"target_year_id" binding:"required"`
}

// PromoteResult reports how many students a promotion moved
type PromoteResult struct {
	Moved int64 `json:"moved"`
}

// ToAcademicYearResponse converts a domain academic year to a response DTO
func ToAcademicYearResponse(y *academic.AcademicYear) AcademicYearResponse {
	return AcademicYearResponse{
		ID:        y.ID,
		Year:      y.Year,
		StartDate: y.StartDate,
		EndDate:   y.EndDate,
		CreatedAt: y.CreatedAt,
		UpdatedAt: y.UpdatedAt,
		Version:   y.Version,
	}
}

// ToAcademicYearResponses converts a slice of domain academic years
func ToAcademicYearResponses(years []academic.AcademicYear) []AcademicYearResponse {
	responses := make([]AcademicYearResponse, len(years))
	for i := range years {
		responses[i] = ToAcademicYearResponse(&years[i])
	}
	return responses
}
