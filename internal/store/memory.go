package store

import (
	"context"
	"sync"

	"fxledger/internal/domain"
)

// Compile-time interface checks.
var _ UserStore = (*MemoryUserStore)(nil)
var _ OrderStore = (*MemoryOrderStore)(nil)

// MemoryUserStore holds users in a map guarded by a RWMutex. Values are
// copied on the way in and out so callers never share balance maps.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]domain.User)}
}

// AddUser stores a copy of user, overwriting any previous entry.
func (s *MemoryUserStore) AddUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	s.users[user.ID] = user.Clone()
	s.mu.Unlock()
	return nil
}

// GetUser returns a copy of the stored user, or nil if absent.
func (s *MemoryUserStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	c := u.Clone()
	return &c, nil
}

// ListUsers returns a deep copy of all users.
func (s *MemoryUserStore) ListUsers(_ context.Context) (map[string]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.User, len(s.users))
	for id, u := range s.users {
		out[id] = u.Clone()
	}
	return out, nil
}

// UserExists reports whether userID is registered.
func (s *MemoryUserStore) UserExists(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	_, ok := s.users[userID]
	s.mu.RUnlock()
	return ok, nil
}

// MemoryOrderStore keeps orders in submission order, with a per-user index
// of positions into that log.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders []domain.Order
	byUser map[string][]int
}

// NewMemoryOrderStore creates an empty MemoryOrderStore.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{byUser: make(map[string][]int)}
}

// AddOrder appends order to the log.
func (s *MemoryOrderStore) AddOrder(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	s.byUser[order.UserID] = append(s.byUser[order.UserID], len(s.orders))
	s.orders = append(s.orders, order)
	s.mu.Unlock()
	return nil
}

// OrdersByUser returns the user's orders in insertion order.
func (s *MemoryOrderStore) OrdersByUser(_ context.Context, userID string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.byUser[userID]
	out := make([]domain.Order, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.orders[i])
	}
	return out, nil
}
