package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tungtungsport/storefront/internal/domain/shared"
)

type entry struct {
	done      bool
	result    string
	expiresAt time.Time
}

// InMemoryIdempotencyStore implements IdempotencyStore in process memory.
// It is used when Redis is disabled and in tests.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates a store with a background sweep of
// expired keys
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// Claim reserves key unless a live entry exists
func (s *InMemoryIdempotencyStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		if e.done {
			return false, e.result, nil
		}
		return false, "", nil
	}
	s.entries[key] = entry{expiresAt: now.Add(ttl)}
	return true, "", nil
}

// Complete records the result for key
func (s *InMemoryIdempotencyStore) Complete(_ context.Context, key, result string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{done: true, result: result, expiresAt: s.now().Add(ttl)}
	return nil
}

// Release drops key
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of stored keys
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
