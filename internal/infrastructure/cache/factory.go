package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sanable/backend/internal/domain/shared"
	"github.com/sanable/backend/internal/infrastructure/config"
)

type storeOptions struct {
	logger       *zap.Logger
	requireRedis bool
}

// StoreOption configures idempotency store construction.
type StoreOption func(*storeOptions)

// WithLogger attaches a logger for the chosen-backend messages.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// WithRequiredRedis disables the in-memory fallback. Multi-instance
// deployments must set this: an in-memory store cannot deduplicate
// requests that land on different processes.
func WithRequiredRedis() StoreOption {
	return func(o *storeOptions) {
		o.requireRedis = true
	}
}

// NewIdempotencyStore connects the payment deduplication store. Redis is
// preferred; when it is unreachable the store degrades to in-memory unless
// WithRequiredRedis was given.
func NewIdempotencyStore(cfg config.RedisConfig, opts ...StoreOption) (shared.IdempotencyStore, error) {
	o := storeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := NewRedisIdempotencyStore(cfg)
	if err == nil {
		o.logger.Info("Using Redis idempotency store")
		return store, nil
	}

	if o.requireRedis {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	o.logger.Warn("Redis unavailable, using in-memory idempotency store; duplicate payments are only caught within this process",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
