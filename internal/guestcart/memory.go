package guestcart

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local tooling.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]Line
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]Line)}
}

func (s *MemoryStore) Items(_ context.Context, deviceToken string) ([]Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := s.carts[deviceToken]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out, nil
}

func (s *MemoryStore) AddItem(_ context.Context, deviceToken string, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[deviceToken] = upsertLine(s.carts[deviceToken], productID, quantity)
	return nil
}

func (s *MemoryStore) UpdateQuantity(_ context.Context, deviceToken string, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[deviceToken]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			break
		}
	}
	return nil
}

func (s *MemoryStore) RemoveItem(_ context.Context, deviceToken string, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[deviceToken]
	filtered := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.ProductID != productID {
			filtered = append(filtered, line)
		}
	}
	s.carts[deviceToken] = filtered
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, deviceToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, deviceToken)
	return nil
}

func (s *MemoryStore) ProductQuantity(_ context.Context, deviceToken string, productID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return quantityOf(s.carts[deviceToken], productID), nil
}
