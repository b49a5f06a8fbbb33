package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanable/backend/internal/domain/identity"
	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/infrastructure/auth"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Failed attempts before the account locks
	LockDuration     time.Duration // How long the lock lasts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles account registration and session lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// Register creates a new administrator account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	existing, err = s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this username already exists")
	}

	user, err := identity.NewUser(req.FirstName, req.LastName, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	info := ToUserInfo(user)
	return &info, nil
}

// Login authenticates by email and password and returns a token pair.
// Unknown email and wrong password produce the same error code.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if user == nil {
		s.logger.Warn("Login for unknown email", zap.String("email", email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !user.CanLogin() {
		if user.IsLocked() {
			s.logger.Warn("Login attempt for locked account", zap.String("email", email))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
		}
		s.logger.Warn("Login attempt for deactivated account", zap.String("email", email))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to persist failed login attempt", zap.Error(err))
		}

		if locked {
			// Locking out the password only helps if the sessions that
			// were opened before the lock go with it
			if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.config.LockDuration); err != nil {
				s.logger.Error("Failed to revoke sessions of locked account", zap.Error(err))
			}
			s.logger.Warn("Account locked after repeated failures",
				zap.String("email", email),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password",
			zap.String("email", email),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLoginSuccess(req.IP)
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Login still succeeds; the stamp is best effort
		s.logger.Error("Failed to persist login stamp", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  ToUserInfo(user),
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The
// account is re-checked so a deactivated user cannot keep a session
// alive by refreshing.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user id in token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if user == nil {
		s.logger.Warn("Refresh for unknown user", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	if !user.CanLogin() {
		s.logger.Warn("Refresh for inactive account", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))

	return &RefreshResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the current access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, req LogoutRequest) error {
	if req.JTI != "" && req.TTL > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, req.JTI, req.TTL); err != nil {
			s.logger.Error("Failed to blacklist token",
				zap.String("user_id", req.UserID.String()),
				zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to terminate session")
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", req.UserID.String()))
	return nil
}

// CurrentUser returns the profile of the authenticated user
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if user == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "User not found")
	}

	info := ToUserInfo(user)
	return &info, nil
}

func mapTokenError(err error) error {
	switch err {
	case auth.ErrExpiredToken:
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case auth.ErrInvalidToken, auth.ErrInvalidClaims, auth.ErrInvalidTokenType:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	case auth.ErrMaxRefreshExceeded:
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
