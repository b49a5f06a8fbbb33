package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes JWTs ahead of their natural expiry. Logout
// revokes a single token by JTI; an account lock revokes every session
// a user holds by recording an invalidation cutoff.
type TokenBlacklist interface {
	// AddToBlacklist revokes one token by its JTI. The ttl should match
	// the token's remaining lifetime; after that the entry is useless.
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error

	// IsBlacklisted reports whether a JTI has been revoked
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// AddUserTokensToBlacklist records a cutoff for the user; tokens
	// issued at or before it are rejected
	AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error

	// IsUserTokenInvalidated reports whether a token issued at
	// tokenIssuedAt falls under the user's cutoff
	IsUserTokenInvalidated(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist implements TokenBlacklist on Redis so revocation
// is shared across server instances
type RedisTokenBlacklist struct {
	client *redis.Client
}

// Revocation entries live under their own namespace, apart from the
// idempotency keys sharing the same Redis
const (
	jtiKeyPrefix  = "auth:revoked:jti:"
	userKeyPrefix = "auth:revoked:user:"
)

// RedisTokenBlacklistConfig holds the Redis connection settings
type RedisTokenBlacklistConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenBlacklist connects to Redis and verifies the connection
// before returning the blacklist
func NewRedisTokenBlacklist(cfg RedisTokenBlacklistConfig) (*RedisTokenBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for token blacklist: %w", err)
	}

	return &RedisTokenBlacklist{client: client}, nil
}

// NewRedisTokenBlacklistWithClient wraps an existing Redis client
func NewRedisTokenBlacklistWithClient(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

// AddToBlacklist revokes a single token until its ttl runs out
func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, jtiKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether the JTI has a live revocation entry
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, jtiKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// AddUserTokensToBlacklist stores the current time as the user's
// invalidation cutoff
func (b *RedisTokenBlacklist) AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error {
	cutoff := time.Now().Unix()
	if err := b.client.Set(ctx, userKeyPrefix+userID, cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user tokens: %w", err)
	}
	return nil
}

// IsUserTokenInvalidated compares the token's issue time against the
// user's cutoff, if one is recorded
func (b *RedisTokenBlacklist) IsUserTokenInvalidated(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	value, err := b.client.Get(ctx, userKeyPrefix+userID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}

	cutoff, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}

	return tokenIssuedAt.Unix() <= cutoff, nil
}

// Close closes the Redis client
func (b *RedisTokenBlacklist) Close() error {
	return b.client.Close()
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps revocations in process memory. Suitable
// for a single instance or tests; revocations are lost on restart.
type InMemoryTokenBlacklist struct {
	mu          sync.RWMutex
	revokedJTIs map[string]time.Time // JTI -> entry expiry
	userCutoffs map[string]time.Time // userID -> invalidation cutoff
}

// NewInMemoryTokenBlacklist creates an empty in-memory blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		revokedJTIs: make(map[string]time.Time),
		userCutoffs: make(map[string]time.Time),
	}
}

// AddToBlacklist revokes a single token until its ttl runs out
func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revokedJTIs[jti] = time.Now().Add(ttl)
	return nil
}

// IsBlacklisted reports whether the JTI has a live revocation entry,
// dropping it once expired
func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, exists := b.revokedJTIs[jti]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.revokedJTIs, jti)
		return false, nil
	}
	return true, nil
}

// AddUserTokensToBlacklist records now as the user's invalidation cutoff
func (b *InMemoryTokenBlacklist) AddUserTokensToBlacklist(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userCutoffs[userID] = time.Now()
	return nil
}

// IsUserTokenInvalidated compares against the cutoff at nanosecond
// precision; tokens minted and revoked within the same second must
// still be caught
func (b *InMemoryTokenBlacklist) IsUserTokenInvalidated(_ context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cutoff, exists := b.userCutoffs[userID]
	if !exists {
		return false, nil
	}
	return tokenIssuedAt.UnixNano() <= cutoff.UnixNano(), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
