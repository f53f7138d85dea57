package driving

import (
	"context"

	"github.com/trellis-labs/authgate/internal/core/domain"
)

// AuthService owns the authentication and session lifecycle: credential
// verification, token issuance, refresh-token rotation and session teardown.
type AuthService interface {
	// Signup creates a new account. The returned summary never contains
	// the password in any form.
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.UserSummary, error)

	// Login verifies credentials, creates a session and issues a token pair
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error)

	// Refresh exchanges a valid refresh token for a new pair, rotating the
	// session's stored hash and invalidating the presented token
	Refresh(ctx context.Context, req domain.RefreshRequest) (*domain.TokenPair, error)

	// Logout deletes the session. The caller is trusted to supply a session
	// id it is authorized to delete.
	Logout(ctx context.Context, sessionID string) error

	// ValidateAccess validates an access token for downstream authorization
	ValidateAccess(ctx context.Context, token string) (*domain.TokenClaims, error)
}
