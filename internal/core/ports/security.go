package ports

import "time"

// PasswordHasher hashes and checks credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never errors: a malformed hash simply does not match.
	Verify(plaintext, hash string) bool
}

// TokenIssuer issues and verifies the two token profiles used by the service.
// Verification failures of any kind are reported as domain.ErrInvalidToken.
type TokenIssuer interface {
	IssueAccess(userID string) (string, error)
	VerifyAccess(token string) (string, error)
	IssueEmailVerification(email string) (string, error)
	VerifyEmailVerification(token string) (string, error)
	// AccessTTL is the lifetime of issued access tokens.
	AccessTTL() time.Duration
}
