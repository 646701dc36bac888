package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps reservations in process memory. Suitable for tests and
// single-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	clock   func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		clock:   time.Now,
	}
}

func (s *MemoryStore) Reserve(ctx context.Context, key string, ttl time.Duration) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if rec, ok := s.records[key]; ok && now.Before(rec.ExpiresAt) {
		switch rec.State {
		case StateCompleted:
			return rec, nil
		default:
			return Record{Key: key, State: StateInFlight, ExpiresAt: rec.ExpiresAt}, nil
		}
	}

	rec := Record{Key: key, State: StateReserved, ExpiresAt: now.Add(ttl)}
	s.records[key] = rec
	return rec, nil
}

func (s *MemoryStore) SaveResponse(ctx context.Context, key string, resp Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return ErrKeyConflict
	}
	rec.State = StateCompleted
	rec.Response = &resp
	s.records[key] = rec
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
