package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/sanable/backend/internal/domain/identity"
)

// RegisterRequest contains the fields for creating an administrator account
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Username  string `json:"username" binding:"required,min=3,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest contains login credentials. The client IP is filled in
// by the handler, not the request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// RefreshRequest carries the refresh token to exchange
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest identifies the session being terminated. All fields
// come from the validated access token, never from the body.
type LogoutRequest struct {
	UserID uuid.UUID
	JTI    string
	TTL    time.Duration
}

// UserInfo is the public view of a user account
type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult contains tokens and the authenticated user's profile
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// RefreshResult contains the replacement token pair
type RefreshResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// ToUserInfo converts a domain user to its public view
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
