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

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent finds payments for a student, newest first
func (r *GormPaymentRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]registry.Payment, error) {
	var paymentModels []models.PaymentModel
	query := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("student_id = ?", studentID)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, PaymentSortFields, "paid_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]registry.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// CountByStudent counts payments recorded for a student
func (r *GormPaymentRepository) CountByStudent(ctx context.Context, studentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *registry.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ registry.PaymentRepository = (*GormPaymentRepository)(nil)
