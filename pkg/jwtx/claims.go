package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token unless configured.
const DefaultSessionTTL = 24 * time.Hour

// Claims are the session-token claims. The account id travels in "sub"
// and validity is derived from "exp" alone; nothing is looked up.
type Claims struct {
	jwt.RegisteredClaims
}

// NewSessionClaims builds claims for accountID valid for ttl from now.
// NumericDate encodes whole seconds, so now is truncated first and the
// returned ExpiresAt is exactly what a verifier will see.
func NewSessionClaims(accountID, issuer string, ttl time.Duration, now time.Time) Claims {
	now = now.Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. Not used
// for revocation today but it keeps that door open.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer when one is expected.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiryAt rejects a token once now has reached exp, and before nbf.
// A token without exp is treated as invalid.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
