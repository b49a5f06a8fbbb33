package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and bookkeeping columns every persisted
// record shares.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity issues a fresh ID and stamps both timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BaseAggregateRoot extends BaseEntity with the version counter used for
// optimistic locking. Every state-changing aggregate method bumps the
// version; repositories compare it on write to detect lost updates.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// NewBaseAggregateRoot starts a new aggregate at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// IncrementVersion records that the aggregate changed.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}
