package session

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-memory CredentialStore useful for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int64]User
}

func NewMemoryStore(users ...User) *MemoryStore {
	s := &MemoryStore{users: make(map[int64]User, len(users))}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *MemoryStore) UserByEmail(ctx context.Context, tenantID *int64, email string) (User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.ToLower(u.Email) != email {
			continue
		}
		if tenantID == nil {
			if u.TenantID == nil {
				return u, true, nil
			}
			continue
		}
		if u.TenantID != nil && *u.TenantID == *tenantID {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id int64) (User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) EmailKnown(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Put(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}
