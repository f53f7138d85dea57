package driven

import (
	"context"

	"github.com/trellis-labs/authgate/internal/core/domain"
)

// UserStore handles user persistence (PostgreSQL)
type UserStore interface {
	// Create persists a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetWithSession retrieves a user by username eagerly joined with the
	// single session matching sessionID. The session is nil when the user
	// exists but owns no such session.
	GetWithSession(ctx context.Context, username, sessionID string) (*domain.User, *domain.Session, error)
}
