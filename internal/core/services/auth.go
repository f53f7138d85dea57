package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trellis-labs/authgate/internal/core/domain"
	"github.com/trellis-labs/authgate/internal/core/ports/driven"
	"github.com/trellis-labs/authgate/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService implements the AuthService interface
type authService struct {
	users    driven.UserStore
	sessions *sessionManager
	hasher   driven.PasswordHasher
	issuer   driven.TokenIssuer
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users driven.UserStore,
	sessions driven.SessionStore,
	hasher driven.PasswordHasher,
	issuer driven.TokenIssuer,
	logger *slog.Logger,
) driving.AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		users:    users,
		sessions: newSessionManager(sessions, hasher),
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger,
	}
}

// Signup creates a new account after checking username and email uniqueness.
// The store's constraints remain the final authority; these checks are
// optimistic.
func (s *authService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.UserSummary, error) {
	// Canonicalize identity fields before anything reads them, so the
	// existence checks and the create all see the same values.
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user.ToSummary(), nil
}

// Login verifies credentials and opens a new session. Account lookup failure
// always surfaces before the password check, so a missing account yields
// ErrNotFound and never ErrUnauthorized.
func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		return nil, domain.ErrUnauthorized
	}

	// The service owns session id generation so the id is available before
	// the first token is signed.
	sessionID := uuid.NewString()

	pair, err := s.signPair(&domain.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, err
	}

	// A session write failure after successful signing leaves the signed
	// pair orphaned. The store error is surfaced alongside the pair; there
	// is no compensating rollback.
	if err := s.sessions.Create(ctx, sessionID, user.ID, pair.RefreshToken, req.IPAddress, req.Device); err != nil {
		return pair, err
	}

	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair and rotates the
// session's stored hash, invalidating the presented token. Unknown user,
// unknown session and hash mismatch are indistinguishable to the caller.
func (s *authService) Refresh(ctx context.Context, req domain.RefreshRequest) (*domain.TokenPair, error) {
	user, session, err := s.users.GetWithSession(ctx, req.Username, req.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("refresh denied: unknown user", "username", req.Username)
			return nil, domain.ErrAccessDenied
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if session == nil {
		s.logger.Debug("refresh denied: unknown session", "session_id", req.SessionID)
		return nil, domain.ErrAccessDenied
	}

	if !s.hasher.Verify(session.TokenHash, req.RefreshToken) {
		s.logger.Debug("refresh denied: token hash mismatch", "session_id", req.SessionID)
		return nil, domain.ErrAccessDenied
	}

	pair, err := s.signPair(&domain.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		SessionID: session.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Rotate(ctx, session.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	return pair, nil
}

// Logout deletes the session unconditionally. No ownership re-check is
// performed; the caller is trusted to supply a session id it may delete.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// ValidateAccess validates an access token and confirms its session still
// exists, so a logged-out session cannot keep using its access token.
func (s *authService) ValidateAccess(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.issuer.VerifyAccess(token)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Get(ctx, claims.SessionID); err != nil {
		return nil, domain.ErrSessionNotFound
	}

	return claims, nil
}

// signPair signs the access and refresh tokens concurrently. Both must
// succeed; a failure in either aborts the pair before any session write.
func (s *authService) signPair(claims *domain.TokenClaims) (*domain.TokenPair, error) {
	var pair domain.TokenPair
	g := new(errgroup.Group)

	g.Go(func() error {
		token, err := s.issuer.SignAccess(claims)
		if err != nil {
			return fmt.Errorf("sign access token: %w", err)
		}
		pair.AccessToken = token
		return nil
	})

	g.Go(func() error {
		token, err := s.issuer.SignRefresh(claims)
		if err != nil {
			return fmt.Errorf("sign refresh token: %w", err)
		}
		pair.RefreshToken = token
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &pair, nil
}
