package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/sanable/backend/internal/domain/registry"
)

// GormUnitOfWork implements registry.UnitOfWork on top of a GORM
// transaction. Repositories handed to the callback share the
// transaction, so a ledger mutation and its payment row commit or roll
// back together.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// WithinTx runs fn inside a single database transaction
func (u *GormUnitOfWork) WithinTx(ctx context.Context, fn func(students registry.StudentRepository, payments registry.PaymentRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStudentRepository(tx), NewGormPaymentRepository(tx))
	})
}

// Ensure GormUnitOfWork implements UnitOfWork
var _ registry.UnitOfWork = (*GormUnitOfWork)(nil)
