package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/trellis-labs/authgate/internal/core/domain"
	"github.com/trellis-labs/authgate/internal/core/ports/driven/mocks"
)

func TestUserStore_GetWithSession(t *testing.T) {
	sessions, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	users := mocks.NewMockUserStore()
	store := NewUserStore(users, sessions)

	user := &domain.User{ID: "user-123", Username: "jdoe", Email: "jane@x.com"}
	if err := store.Create(context.Background(), user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if err := sessions.Create(context.Background(), createTestSession("user-123")); err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	gotUser, gotSession, err := store.GetWithSession(context.Background(), "jdoe", "session-123")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if gotUser.ID != "user-123" {
		t.Errorf("unexpected user: %+v", gotUser)
	}
	if gotSession == nil || gotSession.TokenHash != "hash-abc" {
		t.Errorf("unexpected session: %+v", gotSession)
	}
}

func TestUserStore_GetWithSession_Misses(t *testing.T) {
	sessions, _, cleanup := setupTestSessionStore(t)
	defer cleanup()

	users := mocks.NewMockUserStore()
	store := NewUserStore(users, sessions)

	_ = store.Create(context.Background(), &domain.User{ID: "user-123", Username: "jdoe"})
	_ = store.Create(context.Background(), &domain.User{ID: "user-456", Username: "other", Email: "o@x.com"})
	_ = sessions.Create(context.Background(), createTestSession("user-123"))

	// Unknown user propagates not-found
	if _, _, err := store.GetWithSession(context.Background(), "nobody", "session-123"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Unknown session yields a nil session, not an error
	if _, session, err := store.GetWithSession(context.Background(), "jdoe", "missing"); err != nil || session != nil {
		t.Errorf("expected (user, nil, nil), got session=%+v err=%v", session, err)
	}

	// A session owned by another user is treated as absent
	if _, session, err := store.GetWithSession(context.Background(), "other", "session-123"); err != nil || session != nil {
		t.Errorf("expected foreign session to be hidden, got session=%+v err=%v", session, err)
	}
}
