package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sanable/backend/internal/domain/shared"
)

// BaseModel carries the columns shared by every table.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain maps the bookkeeping columns onto a shared.BaseEntity.
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// FromDomainBaseEntity copies the bookkeeping fields from the entity.
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel adds the version column used for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// ToDomainAggregateRoot maps the row onto a shared.BaseAggregateRoot.
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.ToDomain(), Version: m.Version}
}

// FromDomainAggregateRoot copies identity and version from the aggregate.
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}
