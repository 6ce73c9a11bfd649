// Package credstore provides the credential store implementations backing
// session survival across process restarts: a file store for the default
// single-operator deployment, a Redis store for multi-instance consoles, and
// an in-memory store for tests and ephemeral runs.
package credstore

import (
	"context"
	"sync"

	"github.com/sportsfed/console-gateway/internal/core/domain"
	"github.com/sportsfed/console-gateway/internal/core/ports"
)

// MemoryStore keeps the token/user pair in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *domain.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, token string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = cloneUser(user)
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (*ports.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.user == nil {
		return nil, nil
	}
	return &ports.Credentials{Token: s.token, User: cloneUser(s.user)}, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.Permissions != nil {
		clone.Permissions = append([]string(nil), u.Permissions...)
	}
	return &clone
}
