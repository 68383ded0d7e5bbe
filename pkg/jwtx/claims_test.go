package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/yli59577/puyuann/pkg/jwtx"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "identity"}}

	require.NoError(t, c.ValidateIssuer("identity"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
}

func TestValidateExpiryAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid token", func(t *testing.T) {
		c := jwtx.NewSessionClaims("a", "i", time.Minute, now)
		require.NoError(t, c.ValidateExpiryAt(now))
	})

	t.Run("expiry equal to now is expired", func(t *testing.T) {
		c := jwtx.NewSessionClaims("a", "i", time.Minute, now)
		require.ErrorIs(t, c.ValidateExpiryAt(now.Add(time.Minute)), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := jwtx.NewSessionClaims("a", "i", time.Minute, now)
		require.ErrorIs(t, c.ValidateExpiryAt(now.Add(-time.Second)), jwtx.ErrNotYetValid)
	})

	t.Run("missing exp", func(t *testing.T) {
		c := &jwtx.Claims{}
		require.ErrorIs(t, c.ValidateExpiryAt(now), jwtx.ErrInvalidClaim)
	})
}

func TestNewJTIUnique(t *testing.T) {
	require.NotEqual(t, jwtx.NewJTI(), jwtx.NewJTI())
}

func TestNewSessionClaimsTruncatesToSeconds(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 700*int(time.Millisecond), time.UTC)
	c := jwtx.NewSessionClaims("acct-1", "identity", time.Minute, now)

	want := time.Date(2024, 5, 1, 9, 1, 0, 0, time.UTC)
	require.True(t, c.ExpiresAt.Time.Equal(want), "exp %s", c.ExpiresAt.Time)
	require.True(t, c.IssuedAt.Time.Equal(want.Add(-time.Minute)))

	require.NoError(t, c.ValidateExpiryAt(want.Add(-time.Millisecond)))
	require.ErrorIs(t, c.ValidateExpiryAt(want), jwtx.ErrExpired)
}
