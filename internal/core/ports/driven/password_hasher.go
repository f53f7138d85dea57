package driven

// PasswordHasher handles one-way salted hashing. It serves both account
// passwords and the refresh-token hashes stored on sessions.
type PasswordHasher interface {
	// Hash generates a salted digest. The same input yields a different
	// digest on every call.
	Hash(plaintext string) (string, error)

	// Verify compares a plaintext against a digest in constant time.
	// A malformed digest is never an error, just false.
	Verify(digest, plaintext string) bool
}
