package mocks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/trellis-labs/authgate/internal/core/domain"
	"github.com/trellis-labs/authgate/internal/core/ports/driven"
)

// Ensure mocks implement their ports
var (
	_ driven.PasswordHasher = (*MockHasher)(nil)
	_ driven.TokenIssuer    = (*MockIssuer)(nil)
)

// MockHasher is a mock implementation of PasswordHasher for testing.
// It prefixes the plaintext instead of hashing. NOT secure - only for testing.
type MockHasher struct {
	// HashErr, when set, is returned by Hash
	HashErr error
}

// NewMockHasher creates a new MockHasher
func NewMockHasher() *MockHasher {
	return &MockHasher{}
}

func (m *MockHasher) Hash(plaintext string) (string, error) {
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "hashed:" + plaintext, nil
}

func (m *MockHasher) Verify(digest, plaintext string) bool {
	return digest == "hashed:"+plaintext
}

// MockIssuer is a mock implementation of TokenIssuer. Tokens are
// base64-encoded JSON claims with a kind prefix. NOT secure - only for testing.
type MockIssuer struct {
	// SignAccessErr, when set, is returned by SignAccess
	SignAccessErr error
	// SignRefreshErr, when set, is returned by SignRefresh
	SignRefreshErr error

	mu      sync.Mutex
	counter int
}

// NewMockIssuer creates a new MockIssuer
func NewMockIssuer() *MockIssuer {
	return &MockIssuer{}
}

func (m *MockIssuer) SignAccess(claims *domain.TokenClaims) (string, error) {
	if m.SignAccessErr != nil {
		return "", m.SignAccessErr
	}
	return m.sign("access", claims)
}

func (m *MockIssuer) SignRefresh(claims *domain.TokenClaims) (string, error) {
	if m.SignRefreshErr != nil {
		return "", m.SignRefreshErr
	}
	return m.sign("refresh", claims)
}

func (m *MockIssuer) VerifyAccess(token string) (*domain.TokenClaims, error) {
	return m.verify("access", token)
}

func (m *MockIssuer) VerifyRefresh(token string) (*domain.TokenClaims, error) {
	claims, err := m.verify("refresh", token)
	if err != nil {
		return nil, err
	}
	claims.RefreshToken = token
	return claims, nil
}

func (m *MockIssuer) sign(kind string, claims *domain.TokenClaims) (string, error) {
	m.mu.Lock()
	m.counter++
	seq := m.counter
	m.mu.Unlock()

	payload := struct {
		domain.TokenClaims
		Seq int `json:"seq"` // makes every signed token distinct
	}{TokenClaims: *claims, Seq: seq}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}
	return kind + "." + base64.StdEncoding.EncodeToString(data), nil
}

func (m *MockIssuer) verify(kind, token string) (*domain.TokenClaims, error) {
	encoded, ok := strings.CutPrefix(token, kind+".")
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	var claims domain.TokenClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	claims.RefreshToken = ""
	return &claims, nil
}
