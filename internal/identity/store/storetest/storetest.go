// Package storetest holds the behavioural checks every store driver must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yli59577/puyuann/internal/identity/domain"
	"github.com/yli59577/puyuann/internal/identity/store"
	"github.com/yli59577/puyuann/pkg/idx"
)

// Factory returns a freshly migrated, empty store.
type Factory func(t *testing.T) store.Store

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// Run exercises the store contract against the driver produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("accounts", func(t *testing.T) { testAccounts(t, newStore(t)) })
	t.Run("reclaim", func(t *testing.T) { testReclaim(t, newStore(t)) })
	t.Run("reopen pending", func(t *testing.T) { testReopenPending(t, newStore(t)) })
	t.Run("set credential", func(t *testing.T) { testSetCredential(t, newStore(t)) })
	t.Run("tickets", func(t *testing.T) { testTickets(t, newStore(t)) })
	t.Run("profiles", func(t *testing.T) { testProfiles(t, newStore(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
}

func newAccount(email string, deadline *time.Time) domain.Account {
	return domain.Account{
		ID:                   idx.NewAt(base).String(),
		Email:                email,
		CredentialHash:       "hash",
		Alias:                domain.AliasFromEmail(email),
		VerificationDeadline: deadline,
		CreatedAt:            base,
		UpdatedAt:            base,
	}
}

func ptr(t time.Time) *time.Time { return &t }

func testAccounts(t *testing.T, st store.Store) {
	ctx := context.Background()
	acc := newAccount("a@x.com", ptr(base.Add(5*time.Minute)))

	require.NoError(t, st.Accounts().Create(ctx, acc))

	dup := newAccount("a@x.com", nil)
	err := st.Accounts().Create(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := st.Accounts().FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, acc.ID, got.ID)
	require.Equal(t, "a", got.Alias)
	require.False(t, got.Verified)
	require.NotNil(t, got.VerificationDeadline)
	require.True(t, got.VerificationDeadline.Equal(base.Add(5*time.Minute)))
	require.True(t, got.CreatedAt.Equal(base))

	_, err = st.Accounts().FindByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	got.CredentialHash = "new-hash"
	got.MustChangeCredential = true
	got.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, st.Accounts().Update(ctx, got))

	byID, err := st.Accounts().FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", byID.CredentialHash)
	require.True(t, byID.MustChangeCredential)

	require.NoError(t, st.Accounts().MarkVerified(ctx, "a@x.com", base.Add(2*time.Minute)))
	byID, err = st.Accounts().FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, byID.Verified)
	require.Nil(t, byID.VerificationDeadline)

	require.ErrorIs(t, st.Accounts().MarkVerified(ctx, "nobody@x.com", base), store.ErrNotFound)

	missing := newAccount("ghost@x.com", nil)
	require.ErrorIs(t, st.Accounts().Update(ctx, missing), store.ErrNotFound)

	require.NoError(t, st.Accounts().Delete(ctx, acc.ID))
	require.ErrorIs(t, st.Accounts().Delete(ctx, acc.ID), store.ErrNotFound)
}

func testReclaim(t *testing.T, st store.Store) {
	ctx := context.Background()
	deadline := base.Add(5 * time.Minute)

	expired := newAccount("expired@x.com", ptr(deadline))
	fresh := newAccount("fresh@x.com", ptr(deadline.Add(time.Hour)))
	verified := newAccount("verified@x.com", nil)
	verified.Verified = true

	for _, a := range []domain.Account{expired, fresh, verified} {
		require.NoError(t, st.Accounts().Create(ctx, a))
	}
	require.NoError(t, st.Profiles().EnsureStubFor(ctx, domain.Profile{AccountID: expired.ID, Name: "expired", CreatedAt: base}))

	// deadline == now is reclaimable
	list, err := st.Accounts().FindReclaimable(ctx, deadline)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, expired.ID, list[0].ID)

	ok, err := st.Accounts().DeleteIfReclaimable(ctx, fresh.ID, deadline)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = st.Accounts().DeleteIfReclaimable(ctx, verified.ID, deadline.Add(24*time.Hour))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, st.Profiles().DeleteFor(ctx, expired.ID))
	ok, err = st.Accounts().DeleteIfReclaimable(ctx, expired.ID, deadline)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = st.Accounts().FindByEmail(ctx, "expired@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Profiles().Get(ctx, expired.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testReopenPending(t *testing.T, st store.Store) {
	ctx := context.Background()
	acc := newAccount("p@x.com", ptr(base.Add(time.Minute)))
	require.NoError(t, st.Accounts().Create(ctx, acc))

	newDeadline := base.Add(10 * time.Minute)
	ok, err := st.Accounts().ReopenPending(ctx, acc.ID, "h2", newDeadline, base.Add(5*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	got, err := st.Accounts().FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "h2", got.CredentialHash)
	require.True(t, got.VerificationDeadline.Equal(newDeadline))

	require.NoError(t, st.Accounts().MarkVerified(ctx, acc.Email, base.Add(6*time.Minute)))

	ok, err = st.Accounts().ReopenPending(ctx, acc.ID, "h3", newDeadline, base.Add(7*time.Minute))
	require.NoError(t, err)
	require.False(t, ok)

	got, err = st.Accounts().FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "h2", got.CredentialHash)
}

func testSetCredential(t *testing.T, st store.Store) {
	ctx := context.Background()
	acc := newAccount("c@x.com", ptr(base.Add(time.Minute)))
	require.NoError(t, st.Accounts().Create(ctx, acc))

	// verification lands between a reader's load and its credential write
	require.NoError(t, st.Accounts().MarkVerified(ctx, acc.Email, base.Add(10*time.Second)))
	require.NoError(t, st.Accounts().SetCredential(ctx, acc.ID, "h2", true, base.Add(20*time.Second)))

	got, err := st.Accounts().FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "h2", got.CredentialHash)
	require.True(t, got.MustChangeCredential)
	require.True(t, got.Verified)
	require.Nil(t, got.VerificationDeadline)
	require.True(t, got.UpdatedAt.Equal(base.Add(20*time.Second)))

	pending := newAccount("pending@x.com", ptr(base.Add(time.Minute)))
	require.NoError(t, st.Accounts().Create(ctx, pending))
	require.NoError(t, st.Accounts().SetCredential(ctx, pending.ID, "h3", false, base.Add(time.Second)))

	got, err = st.Accounts().FindByID(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, "h3", got.CredentialHash)
	require.False(t, got.Verified)
	require.NotNil(t, got.VerificationDeadline)
	require.True(t, got.VerificationDeadline.Equal(base.Add(time.Minute)))

	require.ErrorIs(t, st.Accounts().SetCredential(ctx, "missing", "h", false, base), store.ErrNotFound)
}

func testTickets(t *testing.T, st store.Store) {
	ctx := context.Background()

	older := domain.VerificationTicket{
		ID:        idx.NewAt(base).String(),
		Email:     "t@x.com",
		Code:      "111111",
		IssuedAt:  base,
		ExpiresAt: base.Add(10 * time.Minute),
	}
	newer := older
	newer.ID = idx.NewAt(base.Add(time.Minute)).String()
	newer.IssuedAt = base.Add(time.Minute)
	newer.ExpiresAt = base.Add(11 * time.Minute)

	require.NoError(t, st.Tickets().Create(ctx, older))
	require.NoError(t, st.Tickets().Create(ctx, newer))

	got, err := st.Tickets().FindLatestUnconsumed(ctx, "t@x.com", "111111")
	require.NoError(t, err)
	require.Equal(t, newer.ID, got.ID)
	require.True(t, got.ExpiresAt.Equal(newer.ExpiresAt))

	_, err = st.Tickets().FindLatestUnconsumed(ctx, "t@x.com", "222222")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Tickets().FindLatestUnconsumed(ctx, "other@x.com", "111111")
	require.ErrorIs(t, err, store.ErrNotFound)

	ok, err := st.Tickets().MarkConsumed(ctx, newer.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = st.Tickets().MarkConsumed(ctx, newer.ID)
	require.NoError(t, err)
	require.False(t, ok)

	got, err = st.Tickets().FindLatestUnconsumed(ctx, "t@x.com", "111111")
	require.NoError(t, err)
	require.Equal(t, older.ID, got.ID)

	n, err := st.Tickets().PurgeExpiredBefore(ctx, base.Add(10*time.Minute+time.Second))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = st.Tickets().FindLatestUnconsumed(ctx, "t@x.com", "111111")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testProfiles(t *testing.T, st store.Store) {
	ctx := context.Background()
	acc := newAccount("prof@x.com", nil)
	acc.Verified = true
	require.NoError(t, st.Accounts().Create(ctx, acc))

	p := domain.Profile{AccountID: acc.ID, Name: "prof", CreatedAt: base}
	require.NoError(t, st.Profiles().EnsureStubFor(ctx, p))

	p.Name = "ignored"
	require.NoError(t, st.Profiles().EnsureStubFor(ctx, p))

	got, err := st.Profiles().Get(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "prof", got.Name)

	require.NoError(t, st.Profiles().DeleteFor(ctx, acc.ID))
	require.NoError(t, st.Profiles().DeleteFor(ctx, acc.ID))
}

func testTransactions(t *testing.T, st store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().Create(ctx, newAccount("rolled@x.com", nil)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Accounts().FindByEmail(ctx, "rolled@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Accounts().Create(ctx, newAccount("kept@x.com", nil))
	})
	require.NoError(t, err)

	_, err = st.Accounts().FindByEmail(ctx, "kept@x.com")
	require.NoError(t, err)

	require.NoError(t, st.Ping(ctx))
}
