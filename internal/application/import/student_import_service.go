package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanable/backend/internal/domain/academic"
	"github.com/sanable/backend/internal/domain/registry"
	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/domain/shared/valueobject"
	csvimport "github.com/sanable/backend/internal/infrastructure/import"
)

// ConflictMode defines how to handle rows that collide with existing data
type ConflictMode string

const (
	// ConflictModeSkip skips rows whose identity number already exists
	ConflictModeSkip ConflictMode = "skip"
	// ConflictModeFail records an error for rows whose identity number already exists
	ConflictModeFail ConflictMode = "fail"
)

// IsValid checks if the conflict mode is valid
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeFail:
		return true
	}
	return false
}

// StudentImportRow represents a row from the student CSV import
type StudentImportRow struct {
	FirstName      string `csv:"first_name"`
	SecondName     string `csv:"second_name"`
	ThirdName      string `csv:"third_name"`
	FourthName     string `csv:"fourth_name"`
	Gender         string `csv:"gender"`
	IdentityNumber string `csv:"identity_number"`
	ClassLevel     string `csv:"class_level"`
	Address        string `csv:"address"`
	DateOfBirth    string `csv:"date_of_birth"`
	FatherPhone    string `csv:"father_phone"`
	MotherPhone    string `csv:"mother_phone"`
	Fee            string `csv:"fee"`
	AcademicYear   string `csv:"academic_year"`
}

// StudentImportResult represents the result of a student import operation
type StudentImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// StudentImportService handles student bulk import from CSV files
type StudentImportService struct {
	studentRepo registry.StudentRepository
	yearRepo    academic.AcademicYearRepository
	sessions    csvimport.SessionStore
	logger      *zap.Logger
	maxRows     int
}

// ServiceOption configures optional import behavior
type ServiceOption func(*StudentImportService)

// WithMaxRows caps the number of data rows accepted per file
func WithMaxRows(n int) ServiceOption {
	return func(s *StudentImportService) {
		s.maxRows = n
	}
}

// NewStudentImportService creates a new StudentImportService
func NewStudentImportService(
	studentRepo registry.StudentRepository,
	yearRepo academic.AcademicYearRepository,
	sessions csvimport.SessionStore,
	logger *zap.Logger,
	opts ...ServiceOption,
) *StudentImportService {
	s := &StudentImportService{
		studentRepo: studentRepo,
		yearRepo:    yearRepo,
		sessions:    sessions,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetValidationRules returns the validation rules for student import
func (s *StudentImportService) GetValidationRules() []csvimport.FieldRule {
	zero := decimal.Zero
	return []csvimport.FieldRule{
		csvimport.Field("first_name").Required().String().MinLength(1).MaxLength(100).Build(),
		csvimport.Field("second_name").Required().String().MinLength(1).MaxLength(100).Build(),
		csvimport.Field("third_name").String().MaxLength(100).Build(),
		csvimport.Field("fourth_name").String().MaxLength(100).Build(),
		csvimport.Field("gender").Required().String().Custom(validateGender).Build(),
		csvimport.Field("identity_number").Required().String().MinLength(5).MaxLength(50).Unique().Build(),
		csvimport.Field("class_level").Required().String().Custom(validateClassLevel).Build(),
		csvimport.Field("address").Required().String().MinLength(1).MaxLength(500).Build(),
		csvimport.Field("date_of_birth").Required().Date().Build(),
		csvimport.Field("father_phone").String().MaxLength(50).Build(),
		csvimport.Field("mother_phone").String().MaxLength(50).Build(),
		csvimport.Field("fee").Decimal().MinValue(zero).Build(),
		csvimport.Field("academic_year").Int().Reference("academic_year").Build(),
	}
}

// validateGender validates the gender field
func validateGender(value string) error {
	if value == "" {
		return nil // caught by required check
	}
	if !registry.Gender(normalizeEnum(value)).IsValid() {
		return fmt.Errorf("gender must be 'Male' or 'Female'")
	}
	return nil
}

// validateClassLevel validates the class_level field
func validateClassLevel(value string) error {
	if value == "" {
		return nil // caught by required check
	}
	if !registry.ClassLevel(normalizeEnum(value)).IsValid() {
		return fmt.Errorf("class_level must be 'Orchard' or 'Introductory'")
	}
	return nil
}

// normalizeEnum capitalizes the first letter so "male" and "MALE" both
// resolve to the stored form
func normalizeEnum(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + strings.ToLower(value[1:])
}

// LookupAcademicYear checks whether the given year number exists
func (s *StudentImportService) LookupAcademicYear(ctx context.Context, value string) (bool, error) {
	if value == "" {
		return true, nil // optional column
	}
	year, err := parseYearNumber(value)
	if err != nil {
		return false, nil
	}
	record, err := s.yearRepo.FindByYear(ctx, year)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}
	return record != nil, nil
}

// LookupUnique checks if a value already exists for a given field
func (s *StudentImportService) LookupUnique(ctx context.Context, field, value string) (bool, error) {
	if value == "" {
		return false, nil // empty is not a duplicate
	}
	if field != "identity_number" {
		return false, nil
	}
	existing, err := s.studentRepo.FindByIdentityNumber(ctx, value)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}
	return existing != nil, nil
}

// Validate runs the CSV through the shared import pipeline and records
// the outcome on a new session owned by the uploading user.
func (s *StudentImportService) Validate(
	ctx context.Context,
	userID uuid.UUID,
	fileName string,
	fileSize int64,
	reader io.Reader,
) (*csvimport.ImportSession, *csvimport.ValidationResult, error) {
	session := csvimport.NewImportSession(userID, csvimport.EntityStudents, fileName, fileSize)
	if s.sessions != nil {
		if err := s.sessions.Save(session); err != nil {
			return nil, nil, err
		}
	}

	opts := []csvimport.ProcessorOption{}
	if s.maxRows > 0 {
		opts = append(opts, csvimport.WithMaxRows(s.maxRows))
	}
	processor := csvimport.NewImportProcessor(append(opts,
		csvimport.WithReferenceLookup(func(refType, value string) (bool, error) {
			if refType != "academic_year" {
				return false, nil
			}
			return s.LookupAcademicYear(ctx, value)
		}),
		csvimport.WithUniqueLookup(func(entityType, field, value string) (bool, error) {
			return s.LookupUnique(ctx, field, value)
		}),
	)...)

	result, err := processor.Validate(ctx, session, reader, s.GetValidationRules())
	if err != nil {
		return session, nil, err
	}

	return session, result, nil
}

// Import creates students from validated rows. Row level failures are
// collected, never aborting the rest of the file.
func (s *StudentImportService) Import(
	ctx context.Context,
	session *csvimport.ImportSession,
	validRows []*csvimport.Row,
	conflictMode ConflictMode,
) (*StudentImportResult, error) {
	if session.State != csvimport.StateValidated {
		return nil, shared.NewDomainError("INVALID_STATE", "Import session must be in validated state")
	}

	session.UpdateState(csvimport.StateImporting)

	result := &StudentImportResult{
		TotalRows: len(validRows),
	}
	errs := csvimport.NewErrorCollection(100)

	yearIDs := make(map[string]uuid.UUID)

	for _, row := range validRows {
		select {
		case <-ctx.Done():
			session.UpdateState(csvimport.StateCancelled)
			return nil, ctx.Err()
		default:
		}

		if err := s.importRow(ctx, row, conflictMode, yearIDs, result, errs); err != nil {
			session.UpdateState(csvimport.StateFailed)
			return nil, err
		}
	}

	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()

	if result.ErrorRows > 0 {
		session.UpdateState(csvimport.StateFailed)
	} else {
		session.UpdateState(csvimport.StateCompleted)
	}

	s.logger.Info("Student import finished",
		zap.String("session_id", session.ID.String()),
		zap.Int("total", result.TotalRows),
		zap.Int("imported", result.ImportedRows),
		zap.Int("errors", result.ErrorRows))

	return result, nil
}

// ImportFile validates and imports a CSV upload in one pass
func (s *StudentImportService) ImportFile(
	ctx context.Context,
	userID uuid.UUID,
	fileName string,
	fileSize int64,
	reader io.Reader,
	conflictMode ConflictMode,
) (*StudentImportResult, error) {
	if !conflictMode.IsValid() {
		conflictMode = ConflictModeFail
	}

	session, validation, err := s.Validate(ctx, userID, fileName, fileSize, reader)
	if err != nil {
		return nil, err
	}

	// Row errors do not block importing the rows that passed, so a
	// partially bad file still loads its good rows.
	validRows := validation.Rows
	if len(validRows) == 0 {
		return &StudentImportResult{
			TotalRows:   validation.TotalRows,
			ErrorRows:   validation.ErrorRows,
			Errors:      validation.Errors,
			IsTruncated: validation.IsTruncated,
			TotalErrors: validation.TotalErrors,
		}, nil
	}
	if session.State == csvimport.StateFailed {
		session.UpdateState(csvimport.StateValidated)
	}

	result, err := s.Import(ctx, session, validRows, conflictMode)
	if err != nil {
		return nil, err
	}

	// Merge validation row errors into the final report
	result.TotalRows = validation.TotalRows
	result.ErrorRows += validation.ErrorRows
	result.Errors = append(validation.Errors, result.Errors...)
	result.IsTruncated = result.IsTruncated || validation.IsTruncated
	result.TotalErrors += validation.TotalErrors

	return result, nil
}

// importRow creates a single student from a CSV row
func (s *StudentImportService) importRow(
	ctx context.Context,
	row *csvimport.Row,
	conflictMode ConflictMode,
	yearIDs map[string]uuid.UUID,
	result *StudentImportResult,
	errs *csvimport.ErrorCollection,
) error {
	firstName := strings.TrimSpace(row.Get("first_name"))
	secondName := strings.TrimSpace(row.Get("second_name"))
	thirdName := strings.TrimSpace(row.Get("third_name"))
	fourthName := strings.TrimSpace(row.Get("fourth_name"))
	gender := normalizeEnum(row.Get("gender"))
	identityNumber := strings.TrimSpace(row.Get("identity_number"))
	classLevel := normalizeEnum(row.Get("class_level"))
	address := strings.TrimSpace(row.Get("address"))
	dobStr := strings.TrimSpace(row.Get("date_of_birth"))
	fatherPhone := strings.TrimSpace(row.Get("father_phone"))
	motherPhone := strings.TrimSpace(row.Get("mother_phone"))
	feeStr := strings.TrimSpace(row.Get("fee"))
	yearStr := strings.TrimSpace(row.Get("academic_year"))

	// Re-check the identity number inside the import pass; validation
	// and import are separate reads of the store.
	existing, err := s.studentRepo.FindByIdentityNumber(ctx, identityNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to check existing student: %w", err)
	}
	if existing != nil {
		switch conflictMode {
		case ConflictModeSkip:
			result.SkippedRows++
			return nil
		default:
			errs.Add(csvimport.NewRowErrorWithValue(row.LineNumber, "identity_number", csvimport.ErrCodeImportDuplicateInDB,
				fmt.Sprintf("student with identity number '%s' already exists", identityNumber), identityNumber))
			result.ErrorRows++
			return nil
		}
	}

	var dateOfBirth time.Time
	if dobStr != "" {
		dateOfBirth, err = time.Parse("2006-01-02", dobStr)
		if err != nil {
			errs.Add(csvimport.NewRowError(row.LineNumber, "date_of_birth", csvimport.ErrCodeImportInvalidType, "invalid date value"))
			result.ErrorRows++
			return nil
		}
	}

	fee := valueobject.NewMoneyEGP(decimal.Zero)
	if feeStr != "" {
		fee, err = valueobject.NewMoneyEGPFromString(feeStr)
		if err != nil {
			errs.Add(csvimport.NewRowError(row.LineNumber, "fee", csvimport.ErrCodeImportInvalidType, "invalid decimal value"))
			result.ErrorRows++
			return nil
		}
	}

	student, err := registry.NewStudent(
		firstName, secondName, thirdName, fourthName,
		registry.Gender(gender),
		identityNumber,
		registry.ClassLevel(classLevel),
		address,
		dateOfBirth,
		fatherPhone, motherPhone,
		fee,
	)
	if err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
		result.ErrorRows++
		return nil
	}

	if yearStr != "" {
		yearID, err := s.resolveYearID(ctx, yearStr, yearIDs)
		if err != nil {
			errs.Add(csvimport.NewRowErrorWithValue(row.LineNumber, "academic_year", csvimport.ErrCodeImportReferenceNotFound,
				fmt.Sprintf("academic year '%s' not found", yearStr), yearStr))
			result.ErrorRows++
			return nil
		}
		student.Enroll(yearID)
	}

	if err := s.studentRepo.Save(ctx, student); err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, "failed to save student: "+err.Error()))
		result.ErrorRows++
		return nil
	}

	result.ImportedRows++
	return nil
}

// resolveYearID maps a year number to its id, memoizing per file
func (s *StudentImportService) resolveYearID(ctx context.Context, value string, cache map[string]uuid.UUID) (uuid.UUID, error) {
	if id, ok := cache[value]; ok {
		return id, nil
	}

	year, err := parseYearNumber(value)
	if err != nil {
		return uuid.Nil, err
	}

	record, err := s.yearRepo.FindByYear(ctx, year)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}
	if record == nil {
		return uuid.Nil, shared.NewDomainError("NOT_FOUND", "Academic year not found")
	}

	cache[value] = record.ID
	return record.ID, nil
}

func parseYearNumber(value string) (int, error) {
	var year int
	if _, err := fmt.Sscanf(value, "%d", &year); err != nil {
		return 0, err
	}
	if year <= 0 {
		return 0, fmt.Errorf("year must be positive")
	}
	return year, nil
}

// History returns the caller's recent import sessions
func (s *StudentImportService) History(userID uuid.UUID, limit int) ([]*csvimport.ImportSession, error) {
	if s.sessions == nil {
		return []*csvimport.ImportSession{}, nil
	}
	return s.sessions.GetByUser(userID, limit)
}
