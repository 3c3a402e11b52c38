package cache

import (
	"context"
	"sync"
	"time"

	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
)

type memEntry struct {
	rec       record
	expiresAt time.Time
}

// MemoryIdempotencyStore is the single-process store used when no Redis is configured.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

var _ portsrepo.IdempotencyStore = (*MemoryIdempotencyStore)(nil)

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: make(map[string]memEntry), now: time.Now}
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key, fingerprint string, ttl time.Duration) (*portsrepo.StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return e.rec.resolve(fingerprint)
	}
	s.entries[key] = memEntry{rec: record{State: stateInFlight, Fingerprint: fingerprint}, expiresAt: now.Add(ttl)}
	return nil, nil
}

func (s *MemoryIdempotencyStore) Complete(_ context.Context, key string, resp portsrepo.StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{rec: record{State: stateDone, Fingerprint: resp.Fingerprint, Response: &resp}, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
