package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sanable/backend/internal/domain/registry"
	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/infrastructure/persistence/models"
)

// GormStudentRepository implements StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// FindByID finds a student by its ID
func (r *GormStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds all students whose IDs are in the given set
func (r *GormStudentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]registry.Student, error) {
	if len(ids) == 0 {
		return []registry.Student{}, nil
	}
	var studentModels []models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&studentModels).Error; err != nil {
		return nil, err
	}
	students := make([]registry.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// FindByIdentityNumber finds a student by government identity number
func (r *GormStudentRepository) FindByIdentityNumber(ctx context.Context, identityNumber string) (*registry.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("identity_number = ?", identityNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds students with filtering and pagination
func (r *GormStudentRepository) FindAll(ctx context.Context, filter registry.StudentFilter) ([]registry.Student, error) {
	var studentModels []models.StudentModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.StudentModel{}), filter)

	if err := query.Find(&studentModels).Error; err != nil {
		return nil, err
	}
	students := make([]registry.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// Search finds students whose name, class level, address or parent phone
// contains the query, case-insensitively
func (r *GormStudentRepository) Search(ctx context.Context, query string, filter shared.Filter) ([]registry.Student, error) {
	var studentModels []models.StudentModel
	q := r.applySearch(r.db.WithContext(ctx).Model(&models.StudentModel{}), query)

	if filter.Page > 0 && filter.PageSize > 0 {
		q = q.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	q = q.Order(orderClause(filter, StudentSortFields))

	if err := q.Find(&studentModels).Error; err != nil {
		return nil, err
	}
	students := make([]registry.Student, len(studentModels))
	for i, model := range studentModels {
		students[i] = *model.ToDomain()
	}
	return students, nil
}

// CountSearch counts students matching a search query
func (r *GormStudentRepository) CountSearch(ctx context.Context, query string) (int64, error) {
	var count int64
	q := r.applySearch(r.db.WithContext(ctx).Model(&models.StudentModel{}), query)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a student
func (r *GormStudentRepository) Save(ctx context.Context, student *registry.Student) error {
	model := models.StudentModelFromDomain(student)
	return r.db.WithContext(ctx).Omit("Payments").Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormStudentRepository) SaveWithLock(ctx context.Context, student *registry.Student) error {
	model := models.StudentModelFromDomain(student)
	result := r.db.WithContext(ctx).
		Model(model).
		Omit("Payments").
		Where("id = ? AND version = ?", student.ID, student.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Delete removes a student; payments cascade at the database level
func (r *GormStudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StudentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts students matching the filter
func (r *GormStudentRepository) Count(ctx context.Context, filter registry.StudentFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.StudentModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReassignYear moves every student enrolled in sourceYearID with the given
// class level to targetYearID. A single UPDATE keeps the move atomic.
func (r *GormStudentRepository) ReassignYear(ctx context.Context, sourceYearID, targetYearID uuid.UUID, classLevel registry.ClassLevel) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("academic_year_id = ? AND class_level = ?", sourceYearID, classLevel).
		Update("academic_year_id", targetYearID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ClearYear removes the academic year assignment from all students
// enrolled in the given year
func (r *GormStudentRepository) ClearYear(ctx context.Context, yearID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("academic_year_id = ?", yearID).
		Update("academic_year_id", nil).Error
}

// applySearch applies the case-insensitive substring match across the
// searchable student columns
func (r *GormStudentRepository) applySearch(query *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return query
	}
	pattern := "%" + search + "%"
	return query.Where(
		"first_name ILIKE ? OR second_name ILIKE ? OR third_name ILIKE ? OR fourth_name ILIKE ? OR class_level ILIKE ? OR address ILIKE ? OR father_phone ILIKE ? OR mother_phone ILIKE ?",
		pattern, pattern, pattern, pattern, pattern, pattern, pattern, pattern)
}

// applyFilter applies filter options to the query
func (r *GormStudentRepository) applyFilter(query *gorm.DB, filter registry.StudentFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return query.Order(orderClause(filter.Filter, StudentSortFields))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStudentRepository) applyFilterWithoutPagination(query *gorm.DB, filter registry.StudentFilter) *gorm.DB {
	query = r.applySearch(query, filter.Search)

	if filter.ClassLevel != nil {
		query = query.Where("class_level = ?", *filter.ClassLevel)
	}
	if filter.AcademicYearID != nil {
		query = query.Where("academic_year_id = ?", *filter.AcademicYearID)
	}
	if filter.Gender != nil {
		query = query.Where("gender = ?", *filter.Gender)
	}
	if filter.Unassigned {
		query = query.Where("academic_year_id IS NULL")
	}

	return query
}

// orderClause builds a safe ORDER BY clause from a filter
func orderClause(filter shared.Filter, allowed map[string]bool) string {
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	return field + " " + ValidateSortOrder(filter.OrderDir)
}

// Ensure GormStudentRepository implements StudentRepository
var _ registry.StudentRepository = (*GormStudentRepository)(nil)
