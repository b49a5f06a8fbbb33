package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sanable/backend/internal/domain/academic"
	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/infrastructure/persistence/models"
)

// GormAcademicYearRepository implements AcademicYearRepository using GORM
type GormAcademicYearRepository struct {
	db *gorm.DB
}

// NewGormAcademicYearRepository creates a new GormAcademicYearRepository
func NewGormAcademicYearRepository(db *gorm.DB) *GormAcademicYearRepository {
	return &GormAcademicYearRepository{db: db}
}

// FindByID finds an academic year by its ID
func (r *GormAcademicYearRepository) FindByID(ctx context.Context, id uuid.UUID) (*academic.AcademicYear, error) {
	var model models.AcademicYearModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByYear finds an academic year by its calendar year
func (r *GormAcademicYearRepository) FindByYear(ctx context.Context, year int) (*academic.AcademicYear, error) {
	var model models.AcademicYearModel
	if err := r.db.WithContext(ctx).
		Where("year = ?", year).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds academic years with pagination
func (r *GormAcademicYearRepository) FindAll(ctx context.Context, filter shared.Filter) ([]academic.AcademicYear, error) {
	var yearModels []models.AcademicYearModel
	query := r.db.WithContext(ctx).Model(&models.AcademicYearModel{})

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, AcademicYearSortFields, "year")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&yearModels).Error; err != nil {
		return nil, err
	}
	years := make([]academic.AcademicYear, len(yearModels))
	for i, model := range yearModels {
		years[i] = *model.ToDomain()
	}
	return years, nil
}

// Save creates or updates an academic year
func (r *GormAcademicYearRepository) Save(ctx context.Context, year *academic.AcademicYear) error {
	model := models.AcademicYearModelFromDomain(year)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an academic year
func (r *GormAcademicYearRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AcademicYearModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts academic years
func (r *GormAcademicYearRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AcademicYearModel{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormAcademicYearRepository implements AcademicYearRepository
var _ academic.AcademicYearRepository = (*GormAcademicYearRepository)(nil)
