package driven

import (
	"context"

	"github.com/trellis-labs/authgate/internal/core/domain"
)

// SessionStore handles session persistence (PostgreSQL or Redis).
// All operations are point writes keyed by session id; per-row atomicity is
// the store's responsibility, the core does no locking of its own.
type SessionStore interface {
	// Create inserts a new session
	Create(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*domain.Session, error)

	// UpdateTokenHash overwrites the stored refresh-token hash in place
	UpdateTokenHash(ctx context.Context, id, tokenHash string) error

	// Delete deletes a session. Deleting a session that does not exist
	// returns ErrSessionNotFound.
	Delete(ctx context.Context, id string) error
}
