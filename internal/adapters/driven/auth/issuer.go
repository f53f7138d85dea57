package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trellis-labs/authgate/internal/core/domain"
	"github.com/trellis-labs/authgate/internal/core/ports/driven"
)

// Ensure Issuer implements TokenIssuer
var _ driven.TokenIssuer = (*Issuer)(nil)

// Config holds the signing secrets and expirations for both token kinds.
// Access and refresh tokens use distinct secrets so one cannot stand in for
// the other.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// DefaultConfig returns a config with the standard expirations: one hour for
// access tokens, one day for refresh tokens.
func DefaultConfig(accessSecret, refreshSecret string) Config {
	return Config{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}
}

// jwtClaims wraps domain.TokenClaims for JWT compatibility
type jwtClaims struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies access and refresh JWTs using HMAC-SHA256
type Issuer struct {
	cfg Config
}

// NewIssuer creates a new Issuer from the given config
func NewIssuer(cfg Config) *Issuer {
	return &Issuer{cfg: cfg}
}

// SignAccess creates a signed access token
func (i *Issuer) SignAccess(claims *domain.TokenClaims) (string, error) {
	return i.sign(claims, []byte(i.cfg.AccessSecret), i.cfg.AccessTTL)
}

// SignRefresh creates a signed refresh token
func (i *Issuer) SignRefresh(claims *domain.TokenClaims) (string, error) {
	return i.sign(claims, []byte(i.cfg.RefreshSecret), i.cfg.RefreshTTL)
}

// VerifyAccess validates an access token and extracts its claims
func (i *Issuer) VerifyAccess(token string) (*domain.TokenClaims, error) {
	return i.verify(token, []byte(i.cfg.AccessSecret))
}

// VerifyRefresh validates a refresh token and extracts its claims. The raw
// presented token is carried on the claims for comparison against the
// session's stored hash.
func (i *Issuer) VerifyRefresh(token string) (*domain.TokenClaims, error) {
	claims, err := i.verify(token, []byte(i.cfg.RefreshSecret))
	if err != nil {
		return nil, err
	}
	claims.RefreshToken = token
	return claims, nil
}

func (i *Issuer) sign(claims *domain.TokenClaims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	jc := jwtClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Username:  claims.Username,
		SessionID: claims.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jc)
	return token.SignedString(secret)
}

func (i *Issuer) verify(tokenString string, secret []byte) (*domain.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.TokenClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Username:  claims.Username,
		SessionID: claims.SessionID,
	}, nil
}
