package importapp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanable/backend/internal/domain/academic"
	"github.com/sanable/backend/internal/domain/registry"
	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/domain/shared/valueobject"
	csvimport "github.com/sanable/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockStudentRepository is a mock implementation of StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]registry.Student, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]registry.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByIdentityNumber(ctx context.Context, identityNumber string) (*registry.Student, error) {
	args := m.Called(ctx, identityNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Student), args.Error(1)
}

func (m *MockStudentRepository) FindAll(ctx context.Context, filter registry.StudentFilter) ([]registry.Student, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]registry.Student), args.Error(1)
}

func (m *MockStudentRepository) Search(ctx context.Context, query string, filter shared.Filter) ([]registry.Student, error) {
	args := m.Called(ctx, query, filter)
	return args.Get(0).([]registry.Student), args.Error(1)
}

func (m *MockStudentRepository) CountSearch(ctx context.Context, query string) (int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudentRepository) Save(ctx context.Context, student *registry.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) SaveWithLock(ctx context.Context, student *registry.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStudentRepository) Count(ctx context.Context, filter registry.StudentFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudentRepository) ReassignYear(ctx context.Context, sourceYearID, targetYearID uuid.UUID, classLevel registry.ClassLevel) (int64, error) {
	args := m.Called(ctx, sourceYearID, targetYearID, classLevel)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudentRepository) ClearYear(ctx context.Context, yearID uuid.UUID) error {
	args := m.Called(ctx, yearID)
	return args.Error(0)
}

// MockAcademicYearRepository is a mock implementation of AcademicYearRepository
type MockAcademicYearRepository struct {
	mock.Mock
}

func (m *MockAcademicYearRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.AcademicYear, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.AcademicYear), args.Error(1)
}

func (m *MockAcademicYearRepository) FindByYear(ctx context.Context, year int) (*academic.AcademicYear, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.AcademicYear), args.Error(1)
}

func (m *MockAcademicYearRepository) FindAll(ctx context.Context, filter shared.Filter) ([]academic.AcademicYear, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]academic.AcademicYear), args.Error(1)
}

func (m *MockAcademicYearRepository) Save(ctx context.Context, year *academic.AcademicYear) error {
	args := m.Called(ctx, year)
	return args.Error(0)
}

func (m *MockAcademicYearRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAcademicYearRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Test helpers
// =============================================================================

const importHeader = "first_name,second_name,third_name,fourth_name,gender,identity_number,class_level,address,date_of_birth,father_phone,mother_phone,fee,academic_year"

func newImportService(t *testing.T) (*StudentImportService, *MockStudentRepository, *MockAcademicYearRepository) {
	t.Helper()
	studentRepo := new(MockStudentRepository)
	yearRepo := new(MockAcademicYearRepository)

	sessions := csvimport.NewInMemorySessionStore(time.Hour)
	t.Cleanup(sessions.Stop)

	service := NewStudentImportService(studentRepo, yearRepo, sessions, zap.NewNop())
	return service, studentRepo, yearRepo
}

func newStoredYear(t *testing.T, year int) *academic.AcademicYear {
	t.Helper()
	y, err := academic.NewAcademicYear(year,
		time.Date(year, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year+1, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return y
}

// =============================================================================
// Validation rules
// =============================================================================

func TestStudentImportService_GetValidationRules(t *testing.T) {
	service, _, _ := newImportService(t)
	rules := service.GetValidationRules()

	byColumn := make(map[string]csvimport.FieldRule, len(rules))
	for _, r := range rules {
		byColumn[r.Column] = r
	}

	assert.True(t, byColumn["first_name"].Required)
	assert.True(t, byColumn["gender"].Required)
	assert.True(t, byColumn["identity_number"].Required)
	assert.True(t, byColumn["identity_number"].Unique)
	assert.True(t, byColumn["class_level"].Required)
	assert.True(t, byColumn["address"].Required)
	assert.True(t, byColumn["date_of_birth"].Required)
	assert.False(t, byColumn["third_name"].Required)
	assert.Equal(t, "academic_year", byColumn["academic_year"].Reference)
	require.NotNil(t, byColumn["fee"].MinValue)
	assert.True(t, byColumn["fee"].MinValue.IsZero())
}

func TestValidateGender(t *testing.T) {
	assert.NoError(t, validateGender("Male"))
	assert.NoError(t, validateGender("female"))
	assert.NoError(t, validateGender("MALE"))
	assert.NoError(t, validateGender(""))
	assert.Error(t, validateGender("other"))
}

func TestValidateClassLevel(t *testing.T) {
	assert.NoError(t, validateClassLevel("Orchard"))
	assert.NoError(t, validateClassLevel("introductory"))
	assert.NoError(t, validateClassLevel(""))
	assert.Error(t, validateClassLevel("Senior"))
}

// =============================================================================
// Validate
// =============================================================================

func TestStudentImportService_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("clean file", func(t *testing.T) {
		service, studentRepo, _ := newImportService(t)
		studentRepo.On("FindByIdentityNumber", ctx, mock.Anything).Return(nil, shared.ErrNotFound)

		csv := importHeader + "\n" +
			"Ahmed,Hassan,,,Male,29901011234567,Orchard,Cairo,2019-05-14,01001234567,,1000,\n" +
			"Fatma,Said,,,Female,30003021234567,Introductory,Giza,2018-11-02,,01117654321,1500,"

		session, result, err := service.Validate(ctx, uuid.New(), "students.csv", int64(len(csv)), strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, csvimport.StateValidated, session.State)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 2, result.ValidRows)
		assert.Len(t, result.Rows, 2)
	})

	t.Run("flags bad enum and duplicate", func(t *testing.T) {
		service, studentRepo, _ := newImportService(t)

		existing, err := registry.NewStudent("Omar", "Khaled", "", "",
			registry.GenderMale, "29901011234567", registry.ClassLevelOrchard,
			"Alexandria", time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
			"", "", valueobject.NewMoneyEGP(decimal.Zero))
		require.NoError(t, err)

		studentRepo.On("FindByIdentityNumber", ctx, "29901011234567").Return(existing, nil)
		studentRepo.On("FindByIdentityNumber", ctx, mock.Anything).Return(nil, shared.ErrNotFound)

		csv := importHeader + "\n" +
			"Ahmed,Hassan,,,Dragon,40001011234567,Orchard,Cairo,2019-05-14,,,,\n" +
			"Omar,Khaled,,,Male,29901011234567,Orchard,Giza,2019-02-02,,,,"

		_, result, err := service.Validate(ctx, uuid.New(), "students.csv", int64(len(csv)), strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 2, result.ErrorRows)
		assert.Empty(t, result.Rows)
	})

	t.Run("unknown academic year is a reference error", func(t *testing.T) {
		service, studentRepo, yearRepo := newImportService(t)
		studentRepo.On("FindByIdentityNumber", ctx, mock.Anything).Return(nil, shared.ErrNotFound)
		yearRepo.On("FindByYear", ctx, 2099).Return(nil, shared.ErrNotFound)

		csv := importHeader + "\n" +
			"Ahmed,Hassan,,,Male,40001011234567,Orchard,Cairo,2019-05-14,,,,2099"

		_, result, err := service.Validate(ctx, uuid.New(), "students.csv", int64(len(csv)), strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 1, result.ErrorRows)
	})
}

// =============================================================================
// ImportFile
// =============================================================================

func TestStudentImportService_ImportFile(t *testing.T) {
	ctx := context.Background()

	t.Run("imports valid rows", func(t *testing.T) {
		service, studentRepo, yearRepo := newImportService(t)

		year := newStoredYear(t, 2026)
		yearRepo.On("FindByYear", ctx, 2026).Return(year, nil)
		studentRepo.On("FindByIdentityNumber", ctx, mock.Anything).Return(nil, shared.ErrNotFound)

		var saved []*registry.Student
		studentRepo.On("Save", ctx, mock.AnythingOfType("*registry.Student")).
			Run(func(args mock.Arguments) {
				saved = append(saved, args.Get(1).(*registry.Student))
			}).Return(nil)

		csv := importHeader + "\n" +
			"Ahmed,Hassan,Ali,,male,29901011234567,orchard,Cairo,2019-05-14,01001234567,,1000,2026\n" +
			"Fatma,Said,,,Female,30003021234567,Introductory,Giza,2018-11-02,,01117654321,1500,"

		result, err := service.ImportFile(ctx, uuid.New(), "students.csv", int64(len(csv)), strings.NewReader(csv), ConflictModeFail)

		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 2, result.ImportedRows)
		assert.Equal(t, 0, result.ErrorRows)

		require.Len(t, saved, 2)
		assert.Equal(t, registry.GenderMale, saved[0].Gender)
		assert.Equal(t, registry.ClassLevelOrchard, saved[0].ClassLevel)
		assert.True(t, saved[0].IsEnrolledIn(year.ID))
		assert.Nil(t, saved[1].AcademicYearID)
	})

	t.Run("bad rows do not abort the file", func(t *testing.T) {
		service, studentRepo, _ := newImportService(t)

		studentRepo.On("FindByIdentityNumber", ctx, mock.Anything).Return(nil, shared.ErrNotFound)
		studentRepo.On("Save", ctx, mock.AnythingOfType("*registry.Student")).Return(nil)

		csv := importHeader + "\n" +
			"Ahmed,Hassan,,,Male,29901011234567,Orchard,Cairo,2019-05-14,,,,\n" +
			",Said,,,Female,30003021234567,Introductory,Giza,2018-11-02,,,,\n" +
			"Omar,Khaled,,,Male,31105051234567,Orchard,Tanta,2018-01-01,,,-50,"

		result, err := service.ImportFile(ctx, uuid.New(), "students.csv", int64(len(csv)), strings.NewReader(csv), ConflictModeFail)

		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 1, result.ImportedRows)
		assert.Equal(t, 2, result.ErrorRows)
		assert.NotEmpty(t, result.Errors)
	})

	t.Run("all rows invalid yields report not error", func(t *testing.T) {
		service, studentRepo, _ := newImportService(t)
		studentRepo.On("FindByIdentityNumber", ctx, mock.Anything).Return(nil, shared.ErrNotFound)

		csv := importHeader + "\n" +
			",Hassan,,,Male,29901011234567,Orchard,Cairo,2019-05-14,,,,"

		result, err := service.ImportFile(ctx, uuid.New(), "students.csv", int64(len(csv)), strings.NewReader(csv), ConflictModeFail)

		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalRows)
		assert.Equal(t, 0, result.ImportedRows)
		assert.Equal(t, 1, result.ErrorRows)
		studentRepo.AssertNotCalled(t, "Save")
	})

	t.Run("duplicate in store is skipped under skip mode", func(t *testing.T) {
		service, studentRepo, _ := newImportService(t)

		// Unknown at validation time, present by the time the row imports
		studentRepo.On("FindByIdentityNumber", ctx, "29901011234567").Return(nil, shared.ErrNotFound).Once()
		existing, err := registry.NewStudent("Omar", "Khaled", "", "",
			registry.GenderMale, "29901011234567", registry.ClassLevelOrchard,
			"Alexandria", time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
			"", "", valueobject.NewMoneyEGP(decimal.Zero))
		require.NoError(t, err)
		studentRepo.On("FindByIdentityNumber", ctx, "29901011234567").Return(existing, nil)

		csv := importHeader + "\n" +
			"Ahmed,Hassan,,,Male,29901011234567,Orchard,Cairo,2019-05-14,,,,"

		result, err := service.ImportFile(ctx, uuid.New(), "students.csv", int64(len(csv)), strings.NewReader(csv), ConflictModeSkip)

		require.NoError(t, err)
		assert.Equal(t, 1, result.SkippedRows)
		assert.Equal(t, 0, result.ImportedRows)
		studentRepo.AssertNotCalled(t, "Save")
	})
}

// =============================================================================
// History
// =============================================================================

func TestStudentImportService_History(t *testing.T) {
	ctx := context.Background()
	service, studentRepo, _ := newImportService(t)
	studentRepo.On("FindByIdentityNumber", ctx, mock.Anything).Return(nil, shared.ErrNotFound)
	studentRepo.On("Save", ctx, mock.AnythingOfType("*registry.Student")).Return(nil)

	userID := uuid.New()
	csv := importHeader + "\n" +
		"Ahmed,Hassan,,,Male,29901011234567,Orchard,Cairo,2019-05-14,,,,"
	_, err := service.ImportFile(ctx, userID, "students.csv", int64(len(csv)), strings.NewReader(csv), ConflictModeFail)
	require.NoError(t, err)

	sessions, err := service.History(userID, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, csvimport.StateCompleted, sessions[0].State)
	assert.Equal(t, "students.csv", sessions[0].FileName)
}
