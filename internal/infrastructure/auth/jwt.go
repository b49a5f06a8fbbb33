package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sanable/backend/internal/infrastructure/config"
)

// TokenType distinguishes access from refresh tokens. Each kind is signed
// with its own secret, so one can never stand in for the other.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims carries the user identity inside a signed token. RefreshCount
// rides along on refresh tokens so the chain cannot be renewed forever.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// GetUserUUID parses the user ID claim.
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetIssuedAtTime returns the issued-at claim, zero when absent.
func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// GetRemainingTTL returns how long the token stays valid, never negative.
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if remaining := time.Until(c.ExpiresAt.Time); remaining > 0 {
		return remaining
	}
	return 0
}

// TokenPair is the login/refresh response payload.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"` // Bearer
}

// JWTService signs and validates the token pairs used by the auth flow.
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
}

// NewJWTService builds the service from config. An empty refresh secret
// falls back to the access secret.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     []byte(refreshSecret),
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
	}
}

// GenerateTokenInput identifies the user a pair is minted for.
type GenerateTokenInput struct {
	UserID   uuid.UUID
	Username string
}

// GenerateTokenPair mints a fresh pair with a zero refresh count.
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	return s.mintPair(input.UserID.String(), input.Username, 0)
}

// RefreshTokenPair validates the refresh token and mints a replacement
// pair. The new refresh token carries an incremented count; once the
// count reaches the configured maximum the user must log in again.
func (s *JWTService) RefreshTokenPair(refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}
	if _, err := claims.GetUserUUID(); err != nil {
		return nil, ErrInvalidClaims
	}
	return s.mintPair(claims.UserID, claims.Username, claims.RefreshCount+1)
}

// mintPair signs an access/refresh pair for the user. The username is
// carried on the access token only; refresh tokens hold the minimum
// needed to renew.
func (s *JWTService) mintPair(userID, username string, refreshCount int) (*TokenPair, error) {
	now := time.Now()

	accessToken, err := s.sign(&Claims{
		RegisteredClaims: s.registered(userID, now, s.accessExpiration),
		UserID:           userID,
		Username:         username,
		TokenType:        TokenTypeAccess,
	}, s.accessSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.sign(&Claims{
		RegisteredClaims: s.registered(userID, now, s.refreshExpiration),
		UserID:           userID,
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
	}, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (s *JWTService) sign(claims *Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken checks signature, expiry and type of an access token.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken checks signature, expiry and type of a refresh token.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) validate(tokenString string, secret []byte, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != want {
		return nil, ErrInvalidTokenType
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}
