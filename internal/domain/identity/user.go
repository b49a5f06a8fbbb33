package identity

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sanable/backend/internal/domain/shared"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"      // Normal active status
	UserStatusLocked      UserStatus = "locked"      // Locked due to failed attempts
	UserStatusDeactivated UserStatus = "deactivated" // Manually deactivated
)

// Password cost for bcrypt
const bcryptCost = 12

// User represents an administrator account. Email is the login
// identifier; passwords are stored as bcrypt hashes only.
type User struct {
	shared.BaseAggregateRoot
	FirstName      string
	LastName       string
	Username       string
	Email          string
	PasswordHash   string
	Status         UserStatus
	LastLoginAt    *time.Time
	LastLoginIP    string
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewUser creates a new active user with a hashed password
func NewUser(firstName, lastName, username, email, password string) (*User, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Last name cannot be empty")
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      passwordHash,
		Status:            UserStatusActive,
	}, nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// Deactivate deactivates the user
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}

	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	if u.Status == UserStatusLocked {
		u.Status = UserStatusActive
		u.LockedUntil = nil
	}
	u.UpdatedAt = now
	u.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account was locked as a result.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	if u.FailedAttempts >= maxAttempts {
		u.Status = UserStatusLocked
		if lockDuration > 0 {
			lockedUntil := time.Now().Add(lockDuration)
			u.LockedUntil = &lockedUntil
		}
		return true
	}

	return false
}

// IsLocked returns true if the user is locked and the lock has not expired
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}
	return true
}

// CanLogin returns true if the user can log in
func (u *User) CanLogin() bool {
	if u.Status == UserStatusDeactivated {
		return false
	}
	return !u.IsLocked()
}

// FullName returns the user's first and last name joined
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validation functions

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
