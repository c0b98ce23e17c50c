package bookings

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no booking is stored for a preference id.
var ErrNotFound = errors.New("bookings: pending checkout not found")

// Store keeps priced bookings keyed by the payment provider's preference id
// until the payment confirmation arrives.
type Store interface {
	Get(ctx context.Context, preferenceID string) (*PricedBooking, error)
	Set(ctx context.Context, preferenceID string, booking PricedBooking) error
}

// MemoryStore is a process-lifetime Store. Entries are never evicted.
type MemoryStore struct {
	mu      sync.RWMutex
	pending map[string]PricedBooking
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]PricedBooking)}
}

func (s *MemoryStore) Get(ctx context.Context, preferenceID string) (*PricedBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.pending[preferenceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) Set(ctx context.Context, preferenceID string, booking PricedBooking) error {
	if preferenceID == "" {
		return errors.New("bookings: preference id required")
	}
	s.mu.Lock()
	s.pending[preferenceID] = booking
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}
