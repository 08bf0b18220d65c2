package allocator

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process ReservationStore. It backs tests and
// deployments without Redis; reservations are then only shared within one
// service instance.
type MemoryStore struct {
	mu           sync.Mutex
	reservations map[string]Reservation
	now          func() time.Time
}

// NewMemoryStore creates an in-memory reservation store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reservations: make(map[string]Reservation),
		now:          time.Now,
	}
}

// Acquire claims the code if it is free, expired, or already held by ownerID
func (s *MemoryStore) Acquire(ctx context.Context, code, ownerID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.reservations[code]; ok && !existing.Expired(now) && existing.OwnerID != ownerID {
		return &CodeConflictError{Code: code, OwnerID: existing.OwnerID}
	}

	s.reservations[code] = Reservation{
		Code:      code,
		OwnerID:   ownerID,
		ExpiresAt: now.Add(ttl),
	}
	return nil
}

// Get returns the live reservation for the code, nil if free or expired
func (s *MemoryStore) Get(ctx context.Context, code string) (*Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.reservations[code]
	if !ok {
		return nil, nil
	}
	if existing.Expired(s.now()) {
		delete(s.reservations, code)
		return nil, nil
	}
	r := existing
	return &r, nil
}

// Release drops ownerID's claim; releasing someone else's claim is a no-op
func (s *MemoryStore) Release(ctx context.Context, code, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.reservations[code]; ok && existing.OwnerID == ownerID {
		delete(s.reservations, code)
	}
	return nil
}
