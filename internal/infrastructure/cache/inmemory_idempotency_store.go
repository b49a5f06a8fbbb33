package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sanable/backend/internal/domain/shared"
)

const defaultSweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps idempotency keys in a process-local map.
// It only deduplicates requests served by this process, so it is a fallback
// for single-instance deployments and tests.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	keys    map[string]time.Time // key expiry
	done    chan struct{}
	once    sync.Once
	sweeper sync.WaitGroup
}

// NewInMemoryIdempotencyStore builds a store with a background sweeper that
// evicts expired keys.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return newInMemoryStore(defaultSweepInterval)
}

func newInMemoryStore(sweepEvery time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		keys: make(map[string]time.Time),
		done: make(chan struct{}),
	}
	s.sweeper.Add(1)
	go s.sweepLoop(sweepEvery)
	return s
}

// MarkProcessed records the key with a TTL. It returns false when the key is
// already held and not yet expired.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, held := s.keys[key]; held && now.Before(expiry) {
		return false, nil
	}
	s.keys[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether the key is held and not yet expired.
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	expiry, held := s.keys[key]
	s.mu.RUnlock()

	return held && time.Now().Before(expiry), nil
}

// Release forgets the key so the same request may be retried.
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.sweeper.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop(every time.Duration) {
	defer s.sweeper.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, expiry := range s.keys {
		if now.After(expiry) {
			delete(s.keys, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
