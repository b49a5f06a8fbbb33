package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks request keys that have already been handled so
// a retried submission does not apply twice.
type IdempotencyStore interface {
	// MarkProcessed marks a key as handled with a TTL. It returns true if
	// the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether a key has already been handled.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets a key so the same request may be submitted again.
	// Releasing an unknown key is not an error.
	Release(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
