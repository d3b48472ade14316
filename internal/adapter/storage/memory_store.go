package storage

import (
	"context"
	"sync"

	"github.com/rl1809/order-lifecycle/internal/core/domain"
)

// MemoryStore keeps orders in process memory for the lifetime of the process.
// Reads hand out copies so callers never alias stored records.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]*domain.Order)}
}

func (s *MemoryStore) Insert(ctx context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return domain.ErrOrderExists
	}
	stored := order.Clone()
	s.orders[order.ID] = &stored
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.orders[id]
	if !exists {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order.Clone(), nil
}

// Update holds the write lock across the read, fn and the write-back, so the
// status check inside fn and the mutation see the same record.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*domain.Order) error) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[id]
	if !exists {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	work := order.Clone()
	if err := fn(&work); err != nil {
		return domain.Order{}, err
	}
	*order = work
	return work.Clone(), nil
}
