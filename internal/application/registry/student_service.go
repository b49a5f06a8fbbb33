package registry

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sanable/backend/internal/domain/academic"
	"github.com/sanable/backend/internal/domain/registry"
	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/domain/shared/valueobject"
)

// StudentService handles student record operations
type StudentService struct {
	studentRepo registry.StudentRepository
	yearRepo    academic.AcademicYearRepository
}

// NewStudentService creates a new StudentService
func NewStudentService(studentRepo registry.StudentRepository, yearRepo academic.AcademicYearRepository) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		yearRepo:    yearRepo,
	}
}

// Create creates a new student, optionally enrolling them in an academic year
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*StudentResponse, error) {
	existing, err := s.studentRepo.FindByIdentityNumber(ctx, req.IdentityNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Student with this identity number already exists")
	}

	student, err := registry.NewStudent(
		req.FirstName,
		req.SecondName,
		req.ThirdName,
		req.FourthName,
		registry.Gender(req.Gender),
		req.IdentityNumber,
		registry.ClassLevel(req.ClassLevel),
		req.Address,
		req.DateOfBirth,
		req.FatherPhone,
		req.MotherPhone,
		valueobject.NewMoneyEGP(req.Fee),
	)
	if err != nil {
		return nil, err
	}

	if req.AcademicYearID != nil {
		year, err := s.yearRepo.FindByID(ctx, *req.AcademicYearID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if year == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Academic year not found")
		}
		student.Enroll(year.ID)
	}

	if err := s.studentRepo.Save(ctx, student); err != nil {
		return nil, err
	}

	response := ToStudentResponse(student)
	return &response, nil
}

// GetByID retrieves a student by ID
func (s *StudentService) GetByID(ctx context.Context, id uuid.UUID) (*StudentResponse, error) {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if student == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Student not found")
	}

	response := ToStudentResponse(student)
	return &response, nil
}

// List retrieves students with filtering and pagination. A page past the
// end returns an empty slice, not an error.
func (s *StudentService) List(ctx context.Context, filter StudentListFilter) (*shared.Paginated[StudentResponse], error) {
	domainFilter := s.buildFilter(filter)

	students, err := s.studentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.studentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToStudentResponses(students), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// ListByClassLevel retrieves all students at a class level, paginated
func (s *StudentService) ListByClassLevel(ctx context.Context, classLevel registry.ClassLevel, page, perPage int) (*shared.Paginated[StudentResponse], error) {
	if !classLevel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CLASS_LEVEL", "Class level is not valid")
	}

	filter := registry.StudentFilter{
		Filter:     shared.Filter{Page: page, PageSize: perPage},
		ClassLevel: &classLevel,
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

	result := shared.NewPaginated(ToStudentResponses(students), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Search finds students whose name, class level, address or parent phone
// contains the query, case-insensitively
func (s *StudentService) Search(ctx context.Context, query string, page, perPage int) (*shared.Paginated[StudentResponse], error) {
	filter := shared.Filter{Page: page, PageSize: perPage}
	filter.Normalize()

	students, err := s.studentRepo.Search(ctx, query, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.studentRepo.CountSearch(ctx, query)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToStudentResponses(students), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a student's profile and, when provided, fee and enrollment
func (s *StudentService) Update(ctx context.Context, id uuid.UUID, req UpdateStudentRequest) (*StudentResponse, error) {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if student == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Student not found")
	}

	// Merge partial update over the current profile
	firstName := student.FirstName
	secondName := student.SecondName
	thirdName := student.ThirdName
	fourthName := student.FourthName
	gender := student.Gender
	identityNumber := student.IdentityNumber
	classLevel := student.ClassLevel
	address := student.Address
	dateOfBirth := student.DateOfBirth
	fatherPhone := student.FatherPhone
	motherPhone := student.MotherPhone

	if req.FirstName != nil {
		firstName = *req.FirstName
	}
	if req.SecondName != nil {
		secondName = *req.SecondName
	}
	if req.ThirdName != nil {
		thirdName = *req.ThirdName
	}
	if req.FourthName != nil {
		fourthName = *req.FourthName
	}
	if req.Gender != nil {
		gender = registry.Gender(*req.Gender)
	}
	if req.IdentityNumber != nil && *req.IdentityNumber != student.IdentityNumber {
		existing, err := s.studentRepo.FindByIdentityNumber(ctx, *req.IdentityNumber)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Student with this identity number already exists")
		}
		identityNumber = *req.IdentityNumber
	}
	if req.ClassLevel != nil {
		classLevel = registry.ClassLevel(*req.ClassLevel)
	}
	if req.Address != nil {
		address = *req.Address
	}
	if req.DateOfBirth != nil {
		dateOfBirth = *req.DateOfBirth
	}
	if req.FatherPhone != nil {
		fatherPhone = *req.FatherPhone
	}
	if req.MotherPhone != nil {
		motherPhone = *req.MotherPhone
	}

	if err := student.UpdateProfile(
		firstName, secondName, thirdName, fourthName,
		gender, identityNumber, classLevel, address,
		dateOfBirth, fatherPhone, motherPhone,
	); err != nil {
		return nil, err
	}

	if req.Fee != nil {
		if err := student.SetFee(valueobject.NewMoneyEGP(*req.Fee)); err != nil {
			return nil, err
		}
	}

	if req.AcademicYearID != nil {
		year, err := s.yearRepo.FindByID(ctx, *req.AcademicYearID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if year == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Academic year not found")
		}
		student.Enroll(year.ID)
	}

	if err := s.studentRepo.SaveWithLock(ctx, student); err != nil {
		return nil, err
	}

	response := ToStudentResponse(student)
	return &response, nil
}

// Delete removes a student along with their payments
func (s *StudentService) Delete(ctx context.Context, id uuid.UUID) error {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if student == nil {
		return shared.NewDomainError("NOT_FOUND", "Student not found")
	}

	return s.studentRepo.Delete(ctx, id)
}

func (s *StudentService) buildFilter(filter StudentListFilter) registry.StudentFilter {
	domainFilter := registry.StudentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PerPage,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
	}
	if filter.ClassLevel != "" {
		level := registry.ClassLevel(filter.ClassLevel)
		domainFilter.ClassLevel = &level
	}
	if filter.Gender != "" {
		gender := registry.Gender(filter.Gender)
		domainFilter.Gender = &gender
	}
	domainFilter.Normalize()
	return domainFilter
}
