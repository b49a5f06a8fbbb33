package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanable/backend/internal/infrastructure/auth"
	"github.com/sanable/backend/internal/infrastructure/logger"
	"github.com/sanable/backend/internal/interfaces/http/dto"
)

// Context keys populated by the authentication middleware.
const (
	JWTClaimsKey = "jwt_claims"
	JWTUserIDKey = "jwt_user_id"

	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig configures JWTAuthMiddlewareWithConfig.
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist is optional. When nil, revocation checks are skipped.
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are exact request paths served without authentication.
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuthMiddlewareWithConfig authenticates requests with a Bearer access
// token. On success the claims and user ID are stored in the gin context and
// a user-scoped logger is attached to the request context.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	open := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		open[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, skip := open[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		token, err := bearerToken(c)
		if err != nil {
			rejectAuth(c, cfg, err)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			rejectAuth(c, cfg, err)
			return
		}

		if tokenRevoked(c, cfg, claims) {
			rejectAuth(c, cfg, auth.ErrTokenBlacklisted)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)

		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("request authenticated",
				zap.String("user_id", claims.UserID),
				zap.String("username", claims.Username))
		}

		c.Next()
	}
}

// bearerToken extracts the access token from the Authorization header.
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	token, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok || token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// tokenRevoked consults the blacklist for the token's JTI and for a
// user-level invalidation issued after the token was minted. Lookup failures
// are logged and treated as not revoked so authentication stays available
// when the store is down.
func tokenRevoked(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) bool {
	if cfg.TokenBlacklist == nil {
		return false
	}
	ctx := c.Request.Context()

	if claims.ID != "" {
		revoked, err := cfg.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("token blacklist lookup failed",
					zap.String("jti", claims.ID),
					zap.Error(err))
			}
		} else if revoked {
			return true
		}
	}

	if claims.UserID != "" {
		invalidated, err := cfg.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("user token invalidation lookup failed",
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			}
		} else if invalidated {
			return true
		}
	}

	return false
}

// rejectAuth aborts the request with a 401 carrying a code for the failure.
func rejectAuth(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("authentication rejected",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	case errors.Is(err, auth.ErrInvalidTokenType):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token type"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = dto.ErrCodeTokenInvalid, "Token has been revoked"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

// GetJWTClaims returns the claims stored by the middleware, or nil when the
// request was not authenticated.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated user's ID, or "" when the request
// was not authenticated.
func GetJWTUserID(c *gin.Context) string {
	if v, ok := c.Get(JWTUserIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
