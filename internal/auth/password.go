// Password hashing utilities.
//
// WHY BCRYPT?
// bcrypt is a password hashing function designed to be slow — that slowness
// makes brute-force attacks expensive. It also:
//   - Generates a random salt per call (same password → different hashes)
//   - Embeds the salt and cost in the output (no separate salt column)
//   - Compares in constant time inside CompareHashAndPassword
//
// NEVER store passwords in plain text or with fast hashes (MD5, SHA-256).
//
// Hash format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 iterations)
//	 version
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordService provides bcrypt hashing and verification.
//
// The cost is injected rather than hard-coded so it comes from configuration
// in production and can be dropped to bcrypt.MinCost (4) in tests — cost 12
// takes ~250ms per hash, which would make the test suite crawl.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given work factor.
// The cost must be within bcrypt's supported range; configuration parsing is
// the caller's job — a non-numeric BCRYPT_COST fails at startup, it is never
// silently defaulted.
func NewPasswordService(cost int) (*PasswordService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d outside supported range [%d, %d]",
			cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordService{cost: cost}, nil
}

// NewPasswordServiceForTest creates a PasswordService at bcrypt's minimum
// cost. Do NOT use in production — cost 4 is far too weak.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash hashes a plaintext password. The output is self-contained (salt and
// cost included) — store it directly; Verify knows how to decode it.
//
// Returns an error for plaintexts over 72 bytes: bcrypt silently truncates
// beyond that, and we'd rather reject than surprise the caller.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored bcrypt hash.
//
// A malformed or empty stored hash is a mismatch, never a panic or a
// distinguishable error — OAuth-only accounts have an empty hash, and login
// against them must fail exactly like a wrong password.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword compares in constant time, so response
// timing leaks nothing about how close a guess was.
func (p *PasswordService) Verify(hash, plaintext string) bool {
	// Any failure — mismatch, malformed hash, wrong version prefix — is just
	// "no". Callers must not be able to tell the cases apart.
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
