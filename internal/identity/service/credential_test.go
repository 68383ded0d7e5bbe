package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCredentialHashAndVerify(t *testing.T) {
	env := newTestEnv(t)

	hash, err := env.credentials.Hash("secret1")
	require.NoError(t, err)
	require.NotContains(t, hash, "secret1")

	require.True(t, env.credentials.Verify("secret1", hash))
	require.False(t, env.credentials.Verify("secret2", hash))
	require.False(t, env.credentials.Verify("secret1", "not-a-hash"))
	require.False(t, env.credentials.Verify("", hash))

	_, err = env.credentials.Hash("")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestTokenRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	token, expiresAt, err := env.credentials.IssueToken("acct-1", time.Hour)
	require.NoError(t, err)
	require.True(t, expiresAt.Equal(testStart.Add(time.Hour)))

	id, ok := env.credentials.ParseToken(token)
	require.True(t, ok)
	require.Equal(t, "acct-1", id)

	env.clock.Advance(time.Hour - time.Second)
	_, ok = env.credentials.ParseToken(token)
	require.True(t, ok)

	// expiresAt <= now is invalid
	env.clock.Advance(time.Second)
	_, ok = env.credentials.ParseToken(token)
	require.False(t, ok)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	token, _, err := env.credentials.IssueToken("acct-1", time.Hour)
	require.NoError(t, err)

	for _, bad := range []string{"", "abc", "a.b.c", token + "x", token[:len(token)-4]} {
		_, ok := env.credentials.ParseToken(bad)
		require.False(t, ok, bad)
	}

	other := newTestEnv(t)
	_, ok := other.credentials.ParseToken(token)
	require.False(t, ok, "token from a different key")

	_, _, err = env.credentials.IssueToken("", time.Hour)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAuthGatewayResolve(t *testing.T) {
	env := newTestEnv(t)

	token, _, err := env.credentials.IssueToken("acct-9", time.Hour)
	require.NoError(t, err)

	id, ok := env.gateway.Resolve("Bearer " + token)
	require.True(t, ok)
	require.Equal(t, "acct-9", id)

	for _, header := range []string{
		"",
		token,
		"bearer " + token,
		"BEARER " + token,
		"Bearer  " + token,
		"Bearer ",
		"Basic " + token,
	} {
		_, ok := env.gateway.Resolve(header)
		require.False(t, ok, header)
	}

	env.clock.Advance(2 * time.Hour)
	_, ok = env.gateway.Resolve("Bearer " + token)
	require.False(t, ok)
}
