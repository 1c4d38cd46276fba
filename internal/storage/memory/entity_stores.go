package memory

import (
	"context"
	"sync"

	"lending-pool-indexer/internal/domain"
	"lending-pool-indexer/internal/storage"
)

// ReserveStore is an in-memory implementation of storage.ReserveStore.
type ReserveStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Reserve // keyed by reserve ID
}

// NewReserveStore creates a new in-memory reserve store.
func NewReserveStore() *ReserveStore {
	return &ReserveStore{
		data: make(map[string]*domain.Reserve),
	}
}

// Get retrieves a reserve by its ID. Returns ErrNotFound if not exists.
func (s *ReserveStore) Get(_ context.Context, id string) (*domain.Reserve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy to prevent external mutation
	return r.Clone(), nil
}

// Save upserts a reserve.
func (s *ReserveStore) Save(_ context.Context, r *domain.Reserve) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[r.ID] = r.Clone()
	return nil
}

// UserReserveStore is an in-memory implementation of storage.UserReserveStore.
type UserReserveStore struct {
	mu   sync.RWMutex
	data map[string]*domain.UserReserve
}

// NewUserReserveStore creates a new in-memory user reserve store.
func NewUserReserveStore() *UserReserveStore {
	return &UserReserveStore{
		data: make(map[string]*domain.UserReserve),
	}
}

// Get retrieves a user reserve by its ID. Returns ErrNotFound if not exists.
func (s *UserReserveStore) Get(_ context.Context, id string) (*domain.UserReserve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return u.Clone(), nil
}

// Save upserts a user reserve.
func (s *UserReserveStore) Save(_ context.Context, u *domain.UserReserve) error {
	if u == nil || u.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[u.ID] = u.Clone()
	return nil
}

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu   sync.RWMutex
	data map[string]*domain.User
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data: make(map[string]*domain.User),
	}
}

// Get retrieves a user by address. Returns ErrNotFound if not exists.
func (s *UserStore) Get(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	userCopy := *u
	return &userCopy, nil
}

// Save upserts a user.
func (s *UserStore) Save(_ context.Context, u *domain.User) error {
	if u == nil || u.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userCopy := *u
	s.data[u.ID] = &userCopy
	return nil
}

// ReferrerStore is an in-memory implementation of storage.ReferrerStore.
type ReferrerStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Referrer
}

// NewReferrerStore creates a new in-memory referrer store.
func NewReferrerStore() *ReferrerStore {
	return &ReferrerStore{
		data: make(map[string]*domain.Referrer),
	}
}

// Get retrieves a referrer by code. Returns ErrNotFound if not exists.
func (s *ReferrerStore) Get(_ context.Context, id string) (*domain.Referrer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	refCopy := *r
	return &refCopy, nil
}

// Save upserts a referrer.
func (s *ReferrerStore) Save(_ context.Context, r *domain.Referrer) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	refCopy := *r
	s.data[r.ID] = &refCopy
	return nil
}

// NewEntities builds the full in-memory entity store bundle.
func NewEntities() storage.Entities {
	return storage.Entities{
		Reserves:     NewReserveStore(),
		UserReserves: NewUserReserveStore(),
		Users:        NewUserStore(),
		Referrers:    NewReferrerStore(),
	}
}

// Compile-time interface checks.
var (
	_ storage.ReserveStore     = (*ReserveStore)(nil)
	_ storage.UserReserveStore = (*UserReserveStore)(nil)
	_ storage.UserStore        = (*UserStore)(nil)
	_ storage.ReferrerStore    = (*ReferrerStore)(nil)
)
