package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/sanable/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email (lowercased)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername finds a user by username (lowercased)
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindAll finds users with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// Delete removes a user
	Delete(ctx context.Context, id uuid.UUID) error
}
