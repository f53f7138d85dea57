package services

import (
	"context"
	"fmt"
	"time"

	"github.com/trellis-labs/authgate/internal/core/domain"
	"github.com/trellis-labs/authgate/internal/core/ports/driven"
)

// sessionManager owns the session record lifecycle: creation at login, hash
// rotation at refresh, deletion at logout. It never stores a raw refresh
// token, only its hash, so a session holds exactly one valid refresh token
// at any time.
type sessionManager struct {
	sessions driven.SessionStore
	hasher   driven.PasswordHasher
}

func newSessionManager(sessions driven.SessionStore, hasher driven.PasswordHasher) *sessionManager {
	return &sessionManager{
		sessions: sessions,
		hasher:   hasher,
	}
}

// Create hashes the refresh token and persists a new session keyed by
// sessionID. Callers must only invoke this after the token pair has been
// signed successfully.
func (m *sessionManager) Create(ctx context.Context, sessionID, userID, refreshToken, ip, device string) error {
	hash, err := m.hasher.Hash(refreshToken)
	if err != nil {
		return fmt.Errorf("hash refresh token: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:        sessionID,
		UserID:    userID,
		TokenHash: hash,
		IPAddress: ip,
		Device:    device,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Rotate hashes the new refresh token and overwrites the session's stored
// hash in place. The old refresh token becomes unverifiable the instant this
// succeeds. Callers must have already verified the old token against the
// stored hash.
func (m *sessionManager) Rotate(ctx context.Context, sessionID, newRefreshToken string) error {
	hash, err := m.hasher.Hash(newRefreshToken)
	if err != nil {
		return fmt.Errorf("hash refresh token: %w", err)
	}

	if err := m.sessions.UpdateTokenHash(ctx, sessionID, hash); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	return nil
}

// Get retrieves a session by id.
func (m *sessionManager) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.sessions.Get(ctx, sessionID)
}

// Delete removes the session row. Deletion is the only revocation mechanism;
// there is no separate revoked state.
func (m *sessionManager) Delete(ctx context.Context, sessionID string) error {
	if err := m.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
