package models

import (
	"time"

	"github.com/sanable/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate root.
type UserModel struct {
	AggregateModel
	FirstName      string              `gorm:"type:varchar(100);not null"`
	LastName       string              `gorm:"type:varchar(100);not null"`
	Username       string              `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email          string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string              `gorm:"type:varchar(255);not null"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt    *time.Time
	LastLoginIP    string `gorm:"type:varchar(45)"`
	FailedAttempts int    `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Status:            m.Status,
		LastLoginAt:       m.LastLoginAt,
		LastLoginIP:       m.LastLoginIP,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Status = u.Status
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
}

// UserModelFromDomain creates a new persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
