package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/trellis-labs/authgate/internal/core/domain"
	"github.com/trellis-labs/authgate/internal/core/ports/driven/mocks"
)

func newTestAuthService() (*mocks.MockUserStore, *mocks.MockSessionStore, *authService) {
	userStore := mocks.NewMockUserStore()
	sessionStore := mocks.NewMockSessionStore()
	userStore.Sessions = sessionStore
	svc := NewAuthService(userStore, sessionStore, mocks.NewMockHasher(), mocks.NewMockIssuer(), nil).(*authService)
	return userStore, sessionStore, svc
}

func signupJane(t *testing.T, svc *authService) *domain.UserSummary {
	t.Helper()
	user, err := svc.Signup(context.Background(), domain.SignupRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Username:  "jdoe",
		Email:     "jane@x.com",
		Password:  "secret1",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	return user
}

func loginJane(t *testing.T, svc *authService) *domain.TokenPair {
	t.Helper()
	pair, err := svc.Login(context.Background(), domain.LoginRequest{
		Username:  "jdoe",
		Password:  "secret1",
		IPAddress: "192.168.1.1",
		Device:    "Mozilla/5.0",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return pair
}

func TestAuthService_Signup(t *testing.T) {
	_, _, svc := newTestAuthService()

	user := signupJane(t, svc)

	if user.ID == "" {
		t.Error("expected user id to be set")
	}
	if user.Username != "jdoe" || user.Email != "jane@x.com" {
		t.Errorf("unexpected identity fields: %+v", user)
	}

	// The summary must never carry the password in any form
	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "secret1") || strings.Contains(string(data), "password") {
		t.Errorf("serialized user leaks password material: %s", data)
	}
}

func TestAuthService_Signup_CanonicalizesEmail(t *testing.T) {
	userStore, _, svc := newTestAuthService()

	user, err := svc.Signup(context.Background(), domain.SignupRequest{
		Username: "jdoe",
		Email:    "  Jane@X.Com ",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if user.Email != "jane@x.com" {
		t.Errorf("expected canonical email, got %q", user.Email)
	}

	// The stored row must be findable under the canonical form
	if _, err := userStore.GetByEmail(context.Background(), "jane@x.com"); err != nil {
		t.Errorf("canonical email lookup failed: %v", err)
	}
}

func TestAuthService_Signup_Conflicts(t *testing.T) {
	userStore, _, svc := newTestAuthService()
	signupJane(t, svc)

	tests := []struct {
		name string
		req  domain.SignupRequest
		want error
	}{
		{
			name: "username taken",
			req:  domain.SignupRequest{Username: "jdoe", Email: "other@x.com", Password: "pw"},
			want: domain.ErrAlreadyExists,
		},
		{
			name: "email taken",
			req:  domain.SignupRequest{Username: "other", Email: "jane@x.com", Password: "pw"},
			want: domain.ErrAlreadyExists,
		},
		{
			name: "email taken, case variant",
			req:  domain.SignupRequest{Username: "other", Email: "JANE@X.COM", Password: "pw"},
			want: domain.ErrAlreadyExists,
		},
		{
			name: "email taken, surrounding whitespace",
			req:  domain.SignupRequest{Username: "other", Email: "  jane@x.com ", Password: "pw"},
			want: domain.ErrAlreadyExists,
		},
		{
			name: "username taken, surrounding whitespace",
			req:  domain.SignupRequest{Username: " jdoe ", Email: "other@x.com", Password: "pw"},
			want: domain.ErrAlreadyExists,
		},
		{
			name: "missing password",
			req:  domain.SignupRequest{Username: "other", Email: "other@x.com"},
			want: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := userStore.Count()
			_, err := svc.Signup(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if userStore.Count() != before {
				t.Error("conflicting signup wrote a row")
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	_, _, svc := newTestAuthService()
	signupJane(t, svc)

	tests := []struct {
		name    string
		req     domain.LoginRequest
		wantErr error
	}{
		{
			name: "valid credentials",
			req:  domain.LoginRequest{Username: "jdoe", Password: "secret1"},
		},
		{
			name:    "unknown user",
			req:     domain.LoginRequest{Username: "nobody", Password: "secret1"},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "unknown user with wrong password",
			req:     domain.LoginRequest{Username: "nobody", Password: "bad"},
			wantErr: domain.ErrNotFound, // not-found takes precedence
		},
		{
			name:    "wrong password",
			req:     domain.LoginRequest{Username: "jdoe", Password: "bad"},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "empty password",
			req:     domain.LoginRequest{Username: "jdoe"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := svc.Login(context.Background(), tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pair.AccessToken == "" || pair.RefreshToken == "" {
				t.Error("expected both tokens to be set")
			}
			if pair.AccessToken == pair.RefreshToken {
				t.Error("expected access and refresh tokens to differ")
			}
		})
	}
}

func TestAuthService_Login_CreatesSession(t *testing.T) {
	_, sessionStore, svc := newTestAuthService()
	signupJane(t, svc)

	pair := loginJane(t, svc)

	if sessionStore.Count() != 1 {
		t.Fatalf("expected exactly one session, got %d", sessionStore.Count())
	}

	session := sessionStore.First()
	if session.TokenHash == pair.RefreshToken {
		t.Error("stored hash must never equal the raw refresh token")
	}
	if !mocks.NewMockHasher().Verify(session.TokenHash, pair.RefreshToken) {
		t.Error("stored hash does not verify against the issued refresh token")
	}
	if session.IPAddress != "192.168.1.1" || session.Device != "Mozilla/5.0" {
		t.Errorf("client metadata not persisted: %+v", session)
	}
}

func TestAuthService_Login_SigningFailureWritesNoSession(t *testing.T) {
	userStore := mocks.NewMockUserStore()
	sessionStore := mocks.NewMockSessionStore()
	userStore.Sessions = sessionStore
	issuer := mocks.NewMockIssuer()
	issuer.SignRefreshErr = errors.New("signer down")
	svc := NewAuthService(userStore, sessionStore, mocks.NewMockHasher(), issuer, nil).(*authService)
	signupJane(t, svc)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Username: "jdoe", Password: "secret1"})
	if err == nil {
		t.Fatal("expected signing failure to fail the login")
	}
	if sessionStore.Count() != 0 {
		t.Error("no session may be written when signing fails")
	}
}

func TestAuthService_Login_SessionWriteFailureStillReturnsPair(t *testing.T) {
	userStore := mocks.NewMockUserStore()
	sessionStore := mocks.NewMockSessionStore()
	userStore.Sessions = sessionStore
	sessionStore.CreateErr = errors.New("store down")
	svc := NewAuthService(userStore, sessionStore, mocks.NewMockHasher(), mocks.NewMockIssuer(), nil).(*authService)
	signupJane(t, svc)

	pair, err := svc.Login(context.Background(), domain.LoginRequest{Username: "jdoe", Password: "secret1"})
	if err == nil {
		t.Fatal("expected the store error to be surfaced")
	}
	// The signed pair is orphaned but still handed back; there is no rollback.
	if pair == nil || pair.AccessToken == "" {
		t.Error("expected the already-signed pair alongside the error")
	}
}

func TestAuthService_Refresh_Rotation(t *testing.T) {
	_, sessionStore, svc := newTestAuthService()
	signupJane(t, svc)
	pair := loginJane(t, svc)
	sessionID := sessionStore.First().ID

	newPair, err := svc.Refresh(context.Background(), domain.RefreshRequest{
		Username:     "jdoe",
		SessionID:    sessionID,
		RefreshToken: pair.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if newPair.RefreshToken == pair.RefreshToken {
		t.Error("refresh must issue a brand-new refresh token")
	}

	// Rotation is an overwrite, not an append
	if sessionStore.Count() != 1 {
		t.Fatalf("expected one session after rotation, got %d", sessionStore.Count())
	}
	hash := sessionStore.First().TokenHash
	hasher := mocks.NewMockHasher()
	if hasher.Verify(hash, pair.RefreshToken) {
		t.Error("old refresh token still verifies after rotation")
	}
	if !hasher.Verify(hash, newPair.RefreshToken) {
		t.Error("new refresh token does not verify after rotation")
	}

	// Reusing the rotated-out token is denied
	_, err = svc.Refresh(context.Background(), domain.RefreshRequest{
		Username:     "jdoe",
		SessionID:    sessionID,
		RefreshToken: pair.RefreshToken,
	})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied on token reuse, got %v", err)
	}
}

func TestAuthService_Refresh_Denials(t *testing.T) {
	_, sessionStore, svc := newTestAuthService()
	signupJane(t, svc)
	pair := loginJane(t, svc)
	sessionID := sessionStore.First().ID

	tests := []struct {
		name string
		req  domain.RefreshRequest
	}{
		{
			name: "unknown user",
			req:  domain.RefreshRequest{Username: "nobody", SessionID: sessionID, RefreshToken: pair.RefreshToken},
		},
		{
			name: "unknown session",
			req:  domain.RefreshRequest{Username: "jdoe", SessionID: "missing", RefreshToken: pair.RefreshToken},
		},
		{
			name: "tampered token",
			req:  domain.RefreshRequest{Username: "jdoe", SessionID: sessionID, RefreshToken: "forged"},
		},
	}

	// Every denial collapses to the same error so callers cannot probe
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Refresh(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrAccessDenied) {
				t.Errorf("expected ErrAccessDenied, got %v", err)
			}
		})
	}
}

func TestAuthService_Refresh_ConcurrentSameToken(t *testing.T) {
	_, sessionStore, svc := newTestAuthService()
	signupJane(t, svc)
	pair := loginJane(t, svc)
	sessionID := sessionStore.First().ID

	// Race two refreshes carrying the same token. Both may read the stored
	// hash before either rotates, so both may succeed, but rotation is a
	// point overwrite: exactly one issued pair stays live afterwards.
	const racers = 2
	results := make([]*domain.TokenPair, racers)
	errs := make([]error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Refresh(context.Background(), domain.RefreshRequest{
				Username:     "jdoe",
				SessionID:    sessionID,
				RefreshToken: pair.RefreshToken,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i := 0; i < racers; i++ {
		if errs[i] == nil {
			succeeded++
		} else if !errors.Is(errs[i], domain.ErrAccessDenied) {
			t.Errorf("racer %d: expected nil or ErrAccessDenied, got %v", i, errs[i])
		}
	}
	if succeeded == 0 {
		t.Fatal("expected at least one refresh to succeed")
	}

	if sessionStore.Count() != 1 {
		t.Fatalf("expected one session after racing refreshes, got %d", sessionStore.Count())
	}
	hash := sessionStore.First().TokenHash
	hasher := mocks.NewMockHasher()

	if hasher.Verify(hash, pair.RefreshToken) {
		t.Error("presented token survived the race")
	}
	live := 0
	for i := 0; i < racers; i++ {
		if results[i] != nil && hasher.Verify(hash, results[i].RefreshToken) {
			live++
		}
	}
	if live != 1 {
		t.Errorf("expected exactly one live refresh token after the race, got %d", live)
	}
}

func TestAuthService_Logout(t *testing.T) {
	_, sessionStore, svc := newTestAuthService()
	signupJane(t, svc)
	pair := loginJane(t, svc)
	sessionID := sessionStore.First().ID

	if err := svc.Logout(context.Background(), sessionID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if sessionStore.Count() != 0 {
		t.Error("expected session to be removed")
	}

	_, err := svc.Refresh(context.Background(), domain.RefreshRequest{
		Username:     "jdoe",
		SessionID:    sessionID,
		RefreshToken: pair.RefreshToken,
	})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied after logout, got %v", err)
	}

	// Deleting a session that no longer exists surfaces the store error
	if err := svc.Logout(context.Background(), sessionID); err == nil {
		t.Error("expected an error deleting a missing session")
	}
}

func TestAuthService_ValidateAccess(t *testing.T) {
	_, sessionStore, svc := newTestAuthService()
	signupJane(t, svc)
	pair := loginJane(t, svc)
	sessionID := sessionStore.First().ID

	claims, err := svc.ValidateAccess(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.Username != "jdoe" || claims.SessionID != sessionID {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if err := svc.Logout(context.Background(), sessionID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.ValidateAccess(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}
}
