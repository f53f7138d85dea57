package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/trellis-labs/authgate/internal/core/ports/driven"
)

// Ensure Hasher implements PasswordHasher
var _ driven.PasswordHasher = (*Hasher)(nil)

// Hasher implements one-way salted hashing using bcrypt. It serves both
// account passwords and refresh-token hashes.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the default bcrypt cost
func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// NewHasherWithCost creates a Hasher with a custom bcrypt cost
func NewHasherWithCost(cost int) *Hasher {
	return &Hasher{cost: cost}
}

// Hash generates a bcrypt digest. The salt is embedded in the digest, so the
// same input yields a different digest on every call.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify checks a plaintext against a bcrypt digest in constant time.
// A malformed digest is reported as a mismatch, never an error.
func (h *Hasher) Verify(digest, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
