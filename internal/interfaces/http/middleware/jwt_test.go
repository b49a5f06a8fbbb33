package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanable/backend/internal/infrastructure/auth"
	"github.com/sanable/backend/internal/infrastructure/config"
	"github.com/sanable/backend/internal/interfaces/http/dto"
)

// stubBlacklist is a TokenBlacklist with scripted answers.
type stubBlacklist struct {
	revokedJTIs map[string]bool
	userCutoff  map[string]time.Time
	lookupErr   error
	lookupsMade int
}

func (s *stubBlacklist) AddToBlacklist(_ context.Context, jti string, _ time.Duration) error {
	if s.revokedJTIs == nil {
		s.revokedJTIs = map[string]bool{}
	}
	s.revokedJTIs[jti] = true
	return nil
}

func (s *stubBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	s.lookupsMade++
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	return s.revokedJTIs[jti], nil
}

func (s *stubBlacklist) AddUserTokensToBlacklist(_ context.Context, userID string, _ time.Duration) error {
	if s.userCutoff == nil {
		s.userCutoff = map[string]time.Time{}
	}
	s.userCutoff[userID] = time.Now()
	return nil
}

func (s *stubBlacklist) IsUserTokenInvalidated(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	s.lookupsMade++
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	cutoff, ok := s.userCutoff[userID]
	return ok && !issuedAt.After(cutoff), nil
}

func authTestService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "registrar-access-secret-32-chars!",
		RefreshSecret:          "registrar-refresh-secret-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "sanable-backend",
		MaxRefreshCount:        5,
	})
}

// authRouter mounts the middleware in front of a handler that records what
// the middleware put in the context.
func authRouter(cfg JWTMiddlewareConfig) (*gin.Engine, *map[string]string) {
	gin.SetMode(gin.TestMode)
	seen := map[string]string{}
	r := gin.New()
	r.Use(JWTAuthMiddlewareWithConfig(cfg))
	r.GET("/students/roster", func(c *gin.Context) {
		seen["user_id"] = GetJWTUserID(c)
		if claims := GetJWTClaims(c); claims != nil {
			seen["username"] = claims.Username
		}
		c.String(http.StatusOK, "roster")
	})
	r.GET("/api/v1/auth/login", func(c *gin.Context) {
		c.String(http.StatusOK, "login")
	})
	return r, &seen
}

func authGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := authTestService()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Username: "bursar"})
	require.NoError(t, err)

	r, seen := authRouter(JWTMiddlewareConfig{JWTService: svc})
	w := authGet(r, "/students/roster", BearerPrefix+pair.AccessToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), (*seen)["user_id"])
	assert.Equal(t, "bursar", (*seen)["username"])
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	r, _ := authRouter(JWTMiddlewareConfig{
		JWTService: authTestService(),
		SkipPaths:  []string{"/api/v1/auth/login"},
	})

	w := authGet(r, "/api/v1/auth/login", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "login", w.Body.String())
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := authTestService()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Username: "bursar"})
	require.NoError(t, err)

	expiredSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "registrar-access-secret-32-chars!",
		AccessTokenExpiration:  -time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "sanable-backend",
	})
	expired, err := expiredSvc.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Username: "bursar"})
	require.NoError(t, err)

	tests := map[string]struct {
		header   string
		wantCode string
	}{
		"missing header":    {"", dto.ErrCodeTokenInvalid},
		"no bearer prefix":  {pair.AccessToken, dto.ErrCodeTokenInvalid},
		"empty token":       {BearerPrefix, dto.ErrCodeTokenInvalid},
		"garbage token":     {BearerPrefix + "not.a.jwt", dto.ErrCodeTokenInvalid},
		"refresh as access": {BearerPrefix + pair.RefreshToken, dto.ErrCodeTokenInvalid},
		"expired token":     {BearerPrefix + expired.AccessToken, dto.ErrCodeTokenExpired},
	}

	r, _ := authRouter(JWTMiddlewareConfig{JWTService: svc})
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			w := authGet(r, "/students/roster", tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tc.wantCode, errorCode(t, w))
		})
	}
}

func TestJWTAuthMiddleware_RevokedJTI(t *testing.T) {
	svc := authTestService()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Username: "bursar"})
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	bl := &stubBlacklist{}
	require.NoError(t, bl.AddToBlacklist(context.Background(), claims.ID, time.Minute))

	r, _ := authRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: bl})
	w := authGet(r, "/students/roster", BearerPrefix+pair.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))
}

func TestJWTAuthMiddleware_UserInvalidation(t *testing.T) {
	svc := authTestService()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Username: "bursar"})
	require.NoError(t, err)

	bl := &stubBlacklist{}
	require.NoError(t, bl.AddUserTokensToBlacklist(context.Background(), userID.String(), time.Hour))

	r, _ := authRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: bl})
	w := authGet(r, "/students/roster", BearerPrefix+pair.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_BlacklistFailureFailsOpen(t *testing.T) {
	svc := authTestService()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Username: "bursar"})
	require.NoError(t, err)

	bl := &stubBlacklist{lookupErr: assert.AnError}
	r, seen := authRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: bl})
	w := authGet(r, "/students/roster", BearerPrefix+pair.AccessToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), (*seen)["user_id"])
	assert.Equal(t, 2, bl.lookupsMade)
}

func TestGetJWTClaims_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
}
