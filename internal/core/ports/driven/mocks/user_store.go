package mocks

import (
	"context"
	"sync"

	"github.com/trellis-labs/authgate/internal/core/domain"
	"github.com/trellis-labs/authgate/internal/core/ports/driven"
)

// Ensure MockUserStore implements UserStore
var _ driven.UserStore = (*MockUserStore)(nil)

// MockUserStore is a mock implementation of UserStore for testing
type MockUserStore struct {
	mu         sync.RWMutex
	byUsername map[string]*domain.User
	byEmail    map[string]*domain.User

	// Sessions backs GetWithSession; point it at the MockSessionStore used
	// by the test so the join sees the same data.
	Sessions *MockSessionStore

	// CreateErr, when set, is returned by Create
	CreateErr error
}

// NewMockUserStore creates a new MockUserStore
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		byUsername: make(map[string]*domain.User),
		byEmail:    make(map[string]*domain.User),
	}
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUsername[user.Username] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.byUsername[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserStore) GetWithSession(ctx context.Context, username, sessionID string) (*domain.User, *domain.Session, error) {
	user, err := m.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if m.Sessions == nil {
		return user, nil, nil
	}
	session, err := m.Sessions.Get(ctx, sessionID)
	if err != nil || session.UserID != user.ID {
		return user, nil, nil
	}
	return user, session, nil
}

// Helper methods for testing

func (m *MockUserStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byUsername)
}
