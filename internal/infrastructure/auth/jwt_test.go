package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanable/backend/internal/infrastructure/config"
)

func signerConfig(mutate ...func(*config.JWTConfig)) config.JWTConfig {
	cfg := config.JWTConfig{
		Secret:                 "registrar-access-secret-32-chars!",
		RefreshSecret:          "registrar-refresh-secret-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "sanable-backend",
		MaxRefreshCount:        10,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return cfg
}

func mintFor(t *testing.T, svc *JWTService) (GenerateTokenInput, *TokenPair) {
	t.Helper()
	input := GenerateTokenInput{UserID: uuid.New(), Username: "registrar"}
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	return input, pair
}

func TestNewJWTService(t *testing.T) {
	t.Run("carries config through", func(t *testing.T) {
		cfg := signerConfig()
		svc := NewJWTService(cfg)

		assert.Equal(t, []byte(cfg.Secret), svc.accessSecret)
		assert.Equal(t, []byte(cfg.RefreshSecret), svc.refreshSecret)
		assert.Equal(t, cfg.Issuer, svc.issuer)
		assert.Equal(t, cfg.MaxRefreshCount, svc.maxRefreshCount)
	})

	t.Run("empty refresh secret falls back to access secret", func(t *testing.T) {
		svc := NewJWTService(signerConfig(func(c *config.JWTConfig) {
			c.RefreshSecret = ""
		}))

		assert.Equal(t, svc.accessSecret, svc.refreshSecret)
	})
}

func TestGenerateTokenPair(t *testing.T) {
	svc := NewJWTService(signerConfig())
	input, pair := mintFor(t, svc)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt),
		"refresh token outlives the access token")

	t.Run("access claims", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, "registrar", claims.Username)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		assert.Equal(t, "sanable-backend", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("refresh claims start at count zero and omit the username", func(t *testing.T) {
		claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)

		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, TokenTypeRefresh, claims.TokenType)
		assert.Zero(t, claims.RefreshCount)
		assert.Empty(t, claims.Username)
	})
}

func TestValidateAccessToken(t *testing.T) {
	t.Run("garbage is rejected", func(t *testing.T) {
		svc := NewJWTService(signerConfig())
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token is reported as expired", func(t *testing.T) {
		svc := NewJWTService(signerConfig(func(c *config.JWTConfig) {
			c.AccessTokenExpiration = -time.Hour
		}))
		_, pair := mintFor(t, svc)

		_, err := svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		_, pair := mintFor(t, NewJWTService(signerConfig()))

		other := NewJWTService(signerConfig(func(c *config.JWTConfig) {
			c.Secret = "a-completely-different-secret-32!"
		}))
		_, err := other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh token cannot pass as access token", func(t *testing.T) {
		// Same secret for both kinds so only the type check can refuse it.
		svc := NewJWTService(signerConfig(func(c *config.JWTConfig) {
			c.RefreshSecret = c.Secret
		}))
		_, pair := mintFor(t, svc)

		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService(signerConfig(func(c *config.JWTConfig) {
		c.RefreshSecret = c.Secret
	}))
	_, pair := mintFor(t, svc)

	_, err := svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestRefreshTokenPair(t *testing.T) {
	t.Run("issues a new pair for the same user", func(t *testing.T) {
		svc := NewJWTService(signerConfig())
		input, pair := mintFor(t, svc)

		renewed, err := svc.RefreshTokenPair(pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.AccessToken, renewed.AccessToken)
		assert.NotEqual(t, pair.RefreshToken, renewed.RefreshToken)

		claims, err := svc.ValidateAccessToken(renewed.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, input.UserID.String(), claims.UserID)
	})

	t.Run("counts each renewal", func(t *testing.T) {
		svc := NewJWTService(signerConfig())
		_, pair := mintFor(t, svc)

		for want := 1; want <= 3; want++ {
			renewed, err := svc.RefreshTokenPair(pair.RefreshToken)
			require.NoError(t, err)

			claims, err := svc.ValidateRefreshToken(renewed.RefreshToken)
			require.NoError(t, err)
			assert.Equal(t, want, claims.RefreshCount)

			pair = renewed
		}
	})

	t.Run("chain ends at the configured maximum", func(t *testing.T) {
		svc := NewJWTService(signerConfig(func(c *config.JWTConfig) {
			c.MaxRefreshCount = 2
		}))
		_, pair := mintFor(t, svc)

		var err error
		for i := 0; i < 2; i++ {
			pair, err = svc.RefreshTokenPair(pair.RefreshToken)
			require.NoError(t, err)
		}

		_, err = svc.RefreshTokenPair(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc := NewJWTService(signerConfig())
		_, err := svc.RefreshTokenPair("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		svc := NewJWTService(signerConfig(func(c *config.JWTConfig) {
			c.RefreshSecret = c.Secret
		}))
		_, pair := mintFor(t, svc)

		_, err := svc.RefreshTokenPair(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func TestClaims(t *testing.T) {
	svc := NewJWTService(signerConfig())
	input, pair := mintFor(t, svc)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	t.Run("GetUserUUID", func(t *testing.T) {
		id, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, input.UserID, id)
	})

	t.Run("GetRemainingTTL", func(t *testing.T) {
		ttl := claims.GetRemainingTTL()
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, 15*time.Minute)
	})

	t.Run("GetRemainingTTL is zero once expired", func(t *testing.T) {
		expired := NewJWTService(signerConfig(func(c *config.JWTConfig) {
			c.AccessTokenExpiration = -time.Hour
		}))
		_, pair := mintFor(t, expired)

		_, err := expired.ValidateAccessToken(pair.AccessToken)
		require.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("GetIssuedAtTime", func(t *testing.T) {
		issued := claims.GetIssuedAtTime()
		assert.False(t, issued.IsZero())
		assert.WithinDuration(t, time.Now(), issued, time.Minute)
	})

	t.Run("zero-value claims", func(t *testing.T) {
		var empty Claims
		assert.True(t, empty.GetIssuedAtTime().IsZero())
		assert.Zero(t, empty.GetRemainingTTL())
	})
}
