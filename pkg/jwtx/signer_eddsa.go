package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yli59577/puyuann/pkg/cryptox"
)

// EdDSASigner signs session tokens with a single Ed25519 key.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// newEdDSASigner loads a PKCS8 Ed25519 private key. An empty kid is derived
// from the public key so a restarted process with the same key file keeps
// the same kid.
func newEdDSASigner(kid string, pemKey []byte) (*EdDSASigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not Ed25519 private key")
	}
	pub := key.Public().(ed25519.PublicKey)

	if kid == "" {
		kid = KIDFor(pub)
	}
	return &EdDSASigner{kid: kid, key: key, pub: pub}, nil
}

// KIDFor derives a stable short key id from an Ed25519 public key.
func KIDFor(pub ed25519.PublicKey) string {
	return cryptox.Fingerprint(pub)[:16]
}

func (s *EdDSASigner) Alg() string { return jwt.SigningMethodEdDSA.Alg() }
func (s *EdDSASigner) KID() string { return s.kid }
func (s *EdDSASigner) Public() any { return s.pub }

// Sign serialises claims into a compact JWS carrying the kid header.
func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// Validate does a quick sanity check to make sure we actually have keys.
func (s *EdDSASigner) Validate() error {
	switch {
	case s.key == nil || s.pub == nil:
		return errors.New("jwtx: nil Ed25519 key")
	case len(s.key) != ed25519.PrivateKeySize:
		return errors.New("jwtx: invalid Ed25519 private key size")
	case len(s.pub) != ed25519.PublicKeySize:
		return errors.New("jwtx: invalid Ed25519 public key size")
	}
	return nil
}
