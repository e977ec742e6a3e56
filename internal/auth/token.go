// Package auth provides the credential/session primitives: JWT issuance and
// verification, bcrypt password hashing, the bearer-token middleware, and the
// GitHub OAuth provider.
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't store session data.
// Everything needed (subject id, email, expiry) is inside the signed token,
// and the HMAC signature ensures nobody can tamper with it without the secret.
// The flip side: there is no revocation list. A token stays valid until it
// expires, and "logout" is purely a client-side discard.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"userID","email":"...","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure kinds. Callers that need to branch on WHY a token was
// rejected (the middleware, mostly for logging) match these with errors.Is;
// everyone else just checks err != nil.
var (
	ErrTokenExpired      = errors.New("auth: token expired")
	ErrTokenBadSignature = errors.New("auth: token signature invalid")
	ErrTokenMalformed    = errors.New("auth: token malformed")
)

const issuer = "accounts-api"

// TokenService issues and verifies the session tokens.
//
// It holds the HMAC secret and the token lifetime, both sourced from
// configuration once at startup. The same secret signs and verifies — keep it
// safe and rotate it periodically in production.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// Claims is the session token payload. RegisteredClaims contributes the
// standard fields (sub, iat, exp, iss); Email rides alongside so protected
// handlers can identify the account without a DB round-trip.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production (JWT_SECRET=$(openssl rand -hex 32)); anything under 16 bytes is
// rejected outright. A non-positive ttl falls back to the default session
// length of one hour.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates and signs a session token for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256). Symmetric — same key for signing
// and verifying — which is the right trade-off for a single-service backend
// holding one shared secret.
func (s *TokenService) Issue(userID, email string) (string, error) {
	return s.IssueWithTTL(userID, email, s.ttl)
}

// IssueWithTTL creates a token with an explicit lifetime. Used by tests to
// mint already-expired tokens; production code goes through Issue.
func (s *TokenService) IssueWithTTL(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and checks a token string, returning its claims.
//
// CHECKS PERFORMED (by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (exp is in the future, and exp must be present)
//   - Issuer matches ours (rejects tokens minted by other apps)
//   - Algorithm is HS256
//
// ALGORITHM CONFUSION ATTACK:
// Without pinning the algorithm, an attacker could present a token signed
// with "none" or swap HMAC for RSA semantics. jwt.WithValidMethods closes
// that hole.
//
// Failures are translated to the package sentinels so callers can distinguish
// an expired token from a forged one.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenBadSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, fmt.Errorf("auth: invalid token: %w", err)
		}
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if c.Subject == "" {
		return nil, ErrTokenMalformed
	}

	return c, nil
}
