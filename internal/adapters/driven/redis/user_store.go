package redis

import (
	"context"
	"errors"

	"github.com/trellis-labs/authgate/internal/core/domain"
	"github.com/trellis-labs/authgate/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UserStore = (*UserStore)(nil)

// UserStore decorates a relational UserStore so the eager user+session
// lookup consults Redis-held sessions. User reads and writes pass through
// untouched.
type UserStore struct {
	users    driven.UserStore
	sessions driven.SessionStore
}

// NewUserStore wraps users with session lookups against the given Redis
// session store.
func NewUserStore(users driven.UserStore, sessions driven.SessionStore) *UserStore {
	return &UserStore{users: users, sessions: sessions}
}

// Create persists a new user
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	return s.users.Create(ctx, user)
}

// GetByUsername retrieves a user by username
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// GetByEmail retrieves a user by email
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// GetWithSession retrieves the user from the relational store and the
// session from Redis. A session belonging to another user is treated as
// absent, matching the join semantics of the relational implementation.
func (s *UserStore) GetWithSession(ctx context.Context, username, sessionID string) (*domain.User, *domain.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return user, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if session.UserID != user.ID {
		return user, nil, nil
	}

	return user, session, nil
}
