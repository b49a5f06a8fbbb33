package academic

import (
	"context"
	"errors"

	"github.com/google/uuid"

	appregistry "github.com/sanable/backend/internal/application/registry"
	"github.com/sanable/backend/internal/domain/academic"
	"github.com/sanable/backend/internal/domain/registry"
	"github.com/sanable/backend/internal/domain/shared"
)

// RosterService manages academic years and their student rosters. A
// student's year assignment is the single source of truth for roster
// membership; the roster itself is always derived by query.
type RosterService struct {
	yearRepo    academic.AcademicYearRepository
	studentRepo registry.StudentRepository
}

// NewRosterService creates a new RosterService
func NewRosterService(yearRepo academic.AcademicYearRepository, studentRepo registry.StudentRepository) *RosterService {
	return &RosterService{
		yearRepo:    yearRepo,
		studentRepo: studentRepo,
	}
}

// CreateYear creates a new academic year
func (s *RosterService) CreateYear(ctx context.Context, req CreateAcademicYearRequest) (*AcademicYearResponse, error) {
	existing, err := s.yearRepo.FindByYear(ctx, req.Year)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Academic year already exists")
	}

	year, err := academic.NewAcademicYear(req.Year, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if err := s.yearRepo.Save(ctx, year); err != nil {
		return nil, err
	}

	response := ToAcademicYearResponse(year)
	return &response, nil
}

// GetYear retrieves an academic year by ID
func (s *RosterService) GetYear(ctx context.Context, id uuid.UUID) (*AcademicYearResponse, error) {
	year, err := s.yearRepo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if year == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Academic year not found")
	}

	response := ToAcademicYearResponse(year)
	return &response, nil
}

// ListYears retrieves academic years, paginated
func (s *RosterService) ListYears(ctx context.Context, page, perPage int) (*shared.Paginated[AcademicYearResponse], error) {
	filter := shared.Filter{Page: page, PageSize: perPage}
	filter.Normalize()

	years, err := s.yearRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.yearRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToAcademicYearResponses(years), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateYear updates an academic year's fields
func (s *RosterService) UpdateYear(ctx context.Context, id uuid.UUID, req UpdateAcademicYearRequest) (*AcademicYearResponse, error) {
	year, err := s.yearRepo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if year == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Academic year not found")
	}

	newYear := year.Year
	startDate := year.StartDate
	endDate := year.EndDate
	if req.Year != nil {
		newYear = *req.Year
	}
	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	if req.EndDate != nil {
		endDate = *req.EndDate
	}

	if err := year.Update(newYear, startDate, endDate); err != nil {
		return nil, err
	}

	if err := s.yearRepo.Save(ctx, year); err != nil {
		return nil, err
	}

	response := ToAcademicYearResponse(year)
	return &response, nil
}

// DeleteYear removes an academic year. Enrolled students stay but lose
// their year assignment.
func (s *RosterService) DeleteYear(ctx context.Context, id uuid.UUID) error {
	year, err := s.yearRepo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if year == nil {
		return shared.NewDomainError("NOT_FOUND", "Academic year not found")
	}

	if err := s.studentRepo.ClearYear(ctx, id); err != nil {
		return err
	}

	return s.yearRepo.Delete(ctx, id)
}

// AddStudents enrolls the listed students in the year. Unknown ids and
// existing members are skipped, never failing the whole request; a
// student enrolled elsewhere is silently moved since the assignment is
// a single scalar.
func (s *RosterService) AddStudents(ctx context.Context, yearID uuid.UUID, req ModifyRosterRequest) (*RosterChangeResult, error) {
	year, err := s.yearRepo.FindByID(ctx, yearID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if year == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Academic year not found")
	}

	result := &RosterChangeResult{
		Applied: make([]uuid.UUID, 0, len(req.StudentIDs)),
		Skipped: make([]SkippedStudent, 0),
	}

	for _, id := range req.StudentIDs {
		student, err := s.studentRepo.FindByID(ctx, id)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if student == nil {
			result.Skipped = append(result.Skipped, SkippedStudent{StudentID: id, Reason: "student not found"})
			continue
		}
		if student.IsEnrolledIn(yearID) {
			result.Skipped = append(result.Skipped, SkippedStudent{StudentID: id, Reason: "already a member"})
			continue
		}

		student.Enroll(yearID)
		if err := s.studentRepo.SaveWithLock(ctx, student); err != nil {
			return nil, err
		}
		result.Applied = append(result.Applied, id)
	}

	if len(result.Applied) == 0 {
		result.Message = "No students were added"
	}

	return result, nil
}

// RemoveStudents withdraws the listed students from the year. Unknown
// ids and non-members are skipped.
func (s *RosterService) RemoveStudents(ctx context.Context, yearID uuid.UUID, req ModifyRosterRequest) (*RosterChangeResult, error) {
	year, err := s.yearRepo.FindByID(ctx, yearID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if year == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Academic year not found")
	}

	result := &RosterChangeResult{
		Applied: make([]uuid.UUID, 0, len(req.StudentIDs)),
		Skipped: make([]SkippedStudent, 0),
	}

	for _, id := range req.StudentIDs {
		student, err := s.studentRepo.FindByID(ctx, id)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if student == nil {
			result.Skipped = append(result.Skipped, SkippedStudent{StudentID: id, Reason: "student not found"})
			continue
		}
		if !student.IsEnrolledIn(yearID) {
			result.Skipped = append(result.Skipped, SkippedStudent{StudentID: id, Reason: "not a member"})
			continue
		}

		student.Withdraw()
		if err := s.studentRepo.SaveWithLock(ctx, student); err != nil {
			return nil, err
		}
		result.Applied = append(result.Applied, id)
	}

	if len(result.Applied) == 0 {
		result.Message = "No students were removed"
	}

	return result, nil
}

// PromoteOrchard moves every Orchard student from the source year to the
// target year in a single statement
func (s *RosterService) PromoteOrchard(ctx context.Context, req PromoteRequest) (*PromoteResult, error) {
	if req.SourceYearID == req.TargetYearID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Source and target years must differ")
	}

	for _, id := range []uuid.UUID{req.SourceYearID, req.TargetYearID} {
		year, err := s.yearRepo.FindByID(ctx, id)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if year == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Academic year not found")
		}
	}

	moved, err := s.studentRepo.ReassignYear(ctx, req.SourceYearID, req.TargetYearID, registry.OrchardPromotionFilter)
	if err != nil {
		return nil, err
	}

	return &PromoteResult{Moved: moved}, nil
}

// Roster lists the students enrolled in a year, optionally filtered by
// class level, paginated
func (s *RosterService) Roster(ctx context.Context, yearID uuid.UUID, classLevel *registry.ClassLevel, page, perPage int) (*shared.Paginated[appregistry.StudentResponse], error) {
	year, err := s.yearRepo.FindByID(ctx, yearID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if year == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Academic year not found")
	}

	filter := registry.StudentFilter{
		Filter:         shared.Filter{Page: page, PageSize: perPage},
		AcademicYearID: &yearID,
		ClassLevel:     classLevel,
	}
	filter.Normalize()

	students, err := s.studentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.studentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(appregistry.ToStudentResponses(students), total, filter.Page, filter.PageSize)
	return &result, nil
}
