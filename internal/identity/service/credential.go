package service

import (
	"errors"
	"time"

	"github.com/yli59577/puyuann/pkg/clockx"
	"github.com/yli59577/puyuann/pkg/cryptox"
	"github.com/yli59577/puyuann/pkg/jwtx"
)

// CredentialService hashes secrets and issues or parses session tokens.
type CredentialService struct {
	Hasher   *cryptox.PasswordHasher
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Clock    clockx.Clock
	Issuer   string
}

// Hash returns an opaque credential hash. Empty secrets are rejected.
func (s *CredentialService) Hash(secret string) (string, error) {
	h, err := s.Hasher.Hash(secret)
	if err != nil {
		if errors.Is(err, cryptox.ErrEmptyPassword) {
			return "", ErrInvalidRequest
		}
		return "", err
	}
	return h, nil
}

// Verify reports whether secret matches hash. A malformed hash never matches.
func (s *CredentialService) Verify(secret, hash string) bool {
	if secret == "" || hash == "" {
		return false
	}
	return s.Hasher.Verify(secret, hash) == nil
}

// IssueToken signs a session token for accountID that expires ttl from now.
func (s *CredentialService) IssueToken(accountID string, ttl time.Duration) (string, time.Time, error) {
	if accountID == "" || ttl <= 0 {
		return "", time.Time{}, ErrInvalidRequest
	}
	claims := jwtx.NewSessionClaims(accountID, s.Issuer, ttl, s.Clock.Now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// ParseToken returns the account id carried by a valid token. Any signature,
// structure or expiry failure yields false.
func (s *CredentialService) ParseToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}
