// Package auth issues and verifies the bearer credentials that gate the API.
//
// CREDENTIAL FORMAT:
// A credential is an HS256-signed JWT whose payload binds it to one identity:
//
//	{"user":{"id":"<identity ref>"},"iat":1700000000,"exp":1700036000}
//
// The server keeps no session state. Verification needs only the shared secret
// and the clock, so a valid signature is trusted without a database lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the credential lifetime fixed at issuance (36000 seconds).
const DefaultTTL = 36000 * time.Second

var (
	// ErrMissingCredential means the request carried no credential at all.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential covers every other rejection: malformed, unsigned,
	// signature mismatch, expired, or no identity in the payload.
	ErrInvalidCredential = errors.New("invalid credential")
)

// TokenService signs and verifies credentials with one HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. A ttl <= 0 selects DefaultTTL.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// claims is the JWT payload. The nested "user" object keeps the payload shape
// that existing clients already decode.
type claims struct {
	User userClaim `json:"user"`
	jwt.RegisteredClaims
}

type userClaim struct {
	ID string `json:"id"`
}

// Generate issues a credential for the identity with the configured TTL.
func (s *TokenService) Generate(identityRef string) (string, error) {
	return s.GenerateWithDuration(identityRef, s.ttl)
}

// GenerateWithDuration issues a credential with a custom lifetime.
// Used in tests (a negative duration yields an already-expired credential).
func (s *TokenService) GenerateWithDuration(identityRef string, d time.Duration) (string, error) {
	now := s.now()

	c := claims{
		User: userClaim{ID: identityRef},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify checks a raw credential and returns the identity it carries.
//
// An empty string fails with ErrMissingCredential before any cryptography runs.
// Everything else that goes wrong wraps ErrInvalidCredential; the jwt library
// error stays in the chain (errors.Is(err, jwt.ErrTokenExpired) still works) for
// logs and tests, but callers only need to tell the two kinds apart.
//
// ALGORITHM CONFUSION:
// jwt.WithValidMethods pins HS256 so a token claiming "none" or an RSA
// algorithm is rejected before the key is even consulted.
func (s *TokenService) Verify(raw string) (string, error) {
	if raw == "" {
		return "", ErrMissingCredential
	}

	token, err := jwt.ParseWithClaims(
		raw,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("auth: %w: %w", ErrInvalidCredential, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: %w: unexpected claims", ErrInvalidCredential)
	}
	if c.User.ID == "" {
		return "", fmt.Errorf("auth: %w: no identity in payload", ErrInvalidCredential)
	}

	return c.User.ID, nil
}
