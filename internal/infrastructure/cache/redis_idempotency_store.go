package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/infrastructure/config"
)

const (
	idempotencyKeyPrefix = "request:idempotency:"
	redisDialTimeout     = 5 * time.Second
)

// RedisIdempotencyStore shares idempotency state across server instances
// through Redis. Keys are claimed with SET NX so only one instance wins a
// given key.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore connects to Redis and verifies the connection
// with a ping before returning the store.
func NewRedisIdempotencyStore(cfg config.RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisIdempotencyStore{client: client}, nil
}

// MarkProcessed claims the key atomically with a TTL. It returns false when
// another request already holds the key.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	claimed, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming idempotency key: %w", err)
	}
	return claimed, nil
}

// IsProcessed reports whether the key is currently held.
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	held, err := s.client.Exists(ctx, idempotencyKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("checking idempotency key: %w", err)
	}
	return held > 0, nil
}

// Release deletes the key so the same request may be retried. Deleting an
// unknown key is a no-op.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("releasing idempotency key: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
