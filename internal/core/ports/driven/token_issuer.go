package driven

import "github.com/trellis-labs/authgate/internal/core/domain"

// TokenIssuer signs and verifies access and refresh tokens. The two kinds
// use distinct secrets and distinct expirations.
type TokenIssuer interface {
	// SignAccess creates a signed short-lived access token
	SignAccess(claims *domain.TokenClaims) (string, error)

	// SignRefresh creates a signed longer-lived refresh token
	SignRefresh(claims *domain.TokenClaims) (string, error)

	// VerifyAccess validates an access token and extracts its claims
	VerifyAccess(token string) (*domain.TokenClaims, error)

	// VerifyRefresh validates a refresh token and extracts its claims.
	// The returned claims carry the raw presented token so callers can
	// compare it against the stored session hash.
	VerifyRefresh(token string) (*domain.TokenClaims, error)
}
