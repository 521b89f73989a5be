package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"anonymizer-api/internal/model"
)

var ErrUserExists = errors.New("user already exists")

// UserStore is the account storage the auth service depends on.
// GetByEmail returns (nil, nil) when no user matches.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// MemoryUserStore keeps users in process memory. Contents are lost on restart.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]model.User
	now   func() time.Time
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[string]model.User),
		now:   time.Now,
	}
}

func (s *MemoryUserStore) Create(_ context.Context, user *model.User) error {
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("create user failed: empty email")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Email]; ok {
		return fmt.Errorf("create user %q failed: %w", user.Email, ErrUserExists)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.users[user.Email] = *user
	return nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	user, ok := s.users[email]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *MemoryUserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
