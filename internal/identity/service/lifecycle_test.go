package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yli59577/puyuann/internal/identity/domain"
	"github.com/yli59577/puyuann/internal/identity/store"
)

func TestRegisterCreatesPendingAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.lifecycle.Register(ctx, " Alice@Example.com ", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, acc.ID)
	require.Equal(t, "alice@example.com", acc.Email)

	stored, err := env.store.Accounts().FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.False(t, stored.Verified)
	require.Equal(t, "alice", stored.Alias)
	require.NotNil(t, stored.VerificationDeadline)
	require.True(t, stored.VerificationDeadline.Equal(testStart.Add(DefaultVerificationGrace)))

	profile, err := env.store.Profiles().Get(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", profile.Name)

	state, err := env.lifecycle.RegistrationStatus(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, state)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.lifecycle.Register(ctx, "", "secret1")
	require.ErrorIs(t, err, ErrInvalidRequest)
	_, err = env.lifecycle.Register(ctx, "a@x.com", "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRegisterIsIdempotentBeforeVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.lifecycle.Register(ctx, "a@x.com", "s1")
	require.NoError(t, err)

	env.clock.Advance(3 * time.Minute)
	second, err := env.lifecycle.Register(ctx, "a@x.com", "s2")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	stored, err := env.store.Accounts().FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, first.ID, stored.ID)
	require.True(t, env.credentials.Verify("s2", stored.CredentialHash))
	require.False(t, env.credentials.Verify("s1", stored.CredentialHash))
	require.True(t, stored.VerificationDeadline.Equal(env.clock.Now().Add(DefaultVerificationGrace)))
}

func TestRegisterReopensExpiredPendingAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.lifecycle.Register(ctx, "late@x.com", "s1")
	require.NoError(t, err)

	env.clock.Advance(DefaultVerificationGrace + time.Minute)
	state, err := env.lifecycle.RegistrationStatus(ctx, "late@x.com")
	require.NoError(t, err)
	require.Equal(t, domain.StateExpired, state)

	again, err := env.lifecycle.Register(ctx, "late@x.com", "s2")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.False(t, again.IsReclaimable(env.clock.Now()))
}

func TestRegisterAfterVerificationFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "v@x.com", "s1")

	_, err := env.lifecycle.Register(ctx, "v@x.com", "s2")
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	stored, err := env.store.Accounts().FindByEmail(ctx, "v@x.com")
	require.NoError(t, err)
	require.True(t, stored.Verified)
	require.Nil(t, stored.VerificationDeadline)
	require.True(t, env.credentials.Verify("s1", stored.CredentialHash))

	state, err := env.lifecycle.RegistrationStatus(ctx, "v@x.com")
	require.NoError(t, err)
	require.Equal(t, domain.StateVerified, state)
}

func TestConcurrentRegisterSameEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 6
	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acc, err := env.lifecycle.Register(ctx, "race@x.com", "secret")
			ids[i], errs[i] = acc.ID, err
		}(i)
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}

	stored, err := env.store.Accounts().FindByEmail(ctx, "race@x.com")
	require.NoError(t, err)
	require.Equal(t, ids[0], stored.ID)
}

func TestSendCodeSurvivesDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.notifier.fail = errMailDown

	_, err := env.lifecycle.Register(ctx, "m@x.com", "s1")
	require.NoError(t, err)

	code, err := env.lifecycle.SendCode(ctx, "m@x.com")
	require.NoError(t, err)
	require.Regexp(t, sixDigits, code)
	require.NoError(t, env.lifecycle.CheckCode(ctx, "m@x.com", code))
}

func TestCheckCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.lifecycle.Register(ctx, "c@x.com", "s1")
	require.NoError(t, err)
	code, err := env.lifecycle.SendCode(ctx, "c@x.com")
	require.NoError(t, err)
	require.Equal(t, []string{code}, env.notifier.codes["c@x.com"])

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	require.ErrorIs(t, env.lifecycle.CheckCode(ctx, "c@x.com", wrong), ErrCodeInvalidOrExpired)
	require.ErrorIs(t, env.lifecycle.CheckCode(ctx, "c@x.com", ""), ErrInvalidRequest)

	require.NoError(t, env.lifecycle.CheckCode(ctx, "C@X.com", code))
	require.ErrorIs(t, env.lifecycle.CheckCode(ctx, "c@x.com", code), ErrCodeInvalidOrExpired)

	stored, err := env.store.Accounts().FindByEmail(ctx, "c@x.com")
	require.NoError(t, err)
	require.True(t, stored.Verified)
	require.Nil(t, stored.VerificationDeadline)
}

func TestCheckCodeWithoutAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	code, err := env.lifecycle.SendCode(ctx, "pre@x.com")
	require.NoError(t, err)
	require.NoError(t, env.lifecycle.CheckCode(ctx, "pre@x.com", code))

	_, err = env.store.Accounts().FindByEmail(ctx, "pre@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCheckCodeAfterWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.lifecycle.Register(ctx, "slow@x.com", "s1")
	require.NoError(t, err)
	code, err := env.lifecycle.SendCode(ctx, "slow@x.com")
	require.NoError(t, err)

	env.clock.Advance(DefaultCodeWindow + time.Second)
	require.ErrorIs(t, env.lifecycle.CheckCode(ctx, "slow@x.com", code), ErrCodeInvalidOrExpired)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.lifecycle.Login(ctx, "nobody@x.com", "s1")
	require.ErrorIs(t, err, ErrInvalidCredential)

	_, err = env.lifecycle.Register(ctx, "l@x.com", "s1")
	require.NoError(t, err)

	_, err = env.lifecycle.Login(ctx, "l@x.com", "s1")
	require.ErrorIs(t, err, ErrNotVerified)
	_, err = env.lifecycle.Login(ctx, "l@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredential)

	code, err := env.lifecycle.SendCode(ctx, "l@x.com")
	require.NoError(t, err)
	require.NoError(t, env.lifecycle.CheckCode(ctx, "l@x.com", code))

	_, err = env.lifecycle.Login(ctx, "l@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredential)

	sess, err := env.lifecycle.Login(ctx, "L@x.com", "s1")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.False(t, sess.MustChangeCredential)
	require.True(t, sess.ExpiresAt.Equal(testStart.Add(24*time.Hour)))

	id, ok := env.gateway.Resolve("Bearer " + sess.Token)
	require.True(t, ok)
	require.Equal(t, sess.AccountID, id)
}

func TestResetWithOldCredential(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.registerVerified(t, "r@x.com", "old-secret")

	require.ErrorIs(t, env.lifecycle.ResetWithOldCredential(ctx, id, "nope", "new-secret"), ErrInvalidCredential)
	require.ErrorIs(t, env.lifecycle.ResetWithOldCredential(ctx, "missing", "old-secret", "new-secret"), ErrAccountNotFound)
	require.ErrorIs(t, env.lifecycle.ResetWithOldCredential(ctx, id, "old-secret", ""), ErrInvalidRequest)

	require.NoError(t, env.lifecycle.ResetWithOldCredential(ctx, id, "old-secret", "new-secret"))

	_, err := env.lifecycle.Login(ctx, "r@x.com", "old-secret")
	require.ErrorIs(t, err, ErrInvalidCredential)
	_, err = env.lifecycle.Login(ctx, "r@x.com", "new-secret")
	require.NoError(t, err)
}

func TestRecoverThenResetWithToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.registerVerified(t, "f@x.com", "forgotten")

	require.ErrorIs(t, env.lifecycle.RecoverViaTemporaryCredential(ctx, "ghost@x.com"), ErrAccountNotFound)
	require.NoError(t, env.lifecycle.RecoverViaTemporaryCredential(ctx, "f@x.com"))

	temp := env.notifier.temp("f@x.com")
	require.Len(t, temp, TemporaryCredentialLength)

	acc, err := env.lifecycle.AccountSummary(ctx, id)
	require.NoError(t, err)
	require.True(t, acc.MustChangeCredential)
	require.True(t, acc.Verified)

	_, err = env.lifecycle.Login(ctx, "f@x.com", "forgotten")
	require.ErrorIs(t, err, ErrInvalidCredential)

	sess, err := env.lifecycle.Login(ctx, "f@x.com", temp)
	require.NoError(t, err)
	require.True(t, sess.MustChangeCredential)

	accountID, ok := env.gateway.Resolve("Bearer " + sess.Token)
	require.True(t, ok)
	require.NoError(t, env.lifecycle.ResetWithToken(ctx, accountID, "brand-new"))

	acc, err = env.lifecycle.AccountSummary(ctx, id)
	require.NoError(t, err)
	require.False(t, acc.MustChangeCredential)

	require.ErrorIs(t, env.lifecycle.ResetWithToken(ctx, "missing", "brand-new"), ErrAccountNotFound)
}

func TestRecoverLeavesPendingAccountUnverified(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.lifecycle.Register(ctx, "p@x.com", "s1")
	require.NoError(t, err)
	require.NoError(t, env.lifecycle.RecoverViaTemporaryCredential(ctx, "p@x.com"))

	stored, err := env.store.Accounts().FindByEmail(ctx, "p@x.com")
	require.NoError(t, err)
	require.False(t, stored.Verified)
	require.True(t, stored.MustChangeCredential)
	require.NotNil(t, stored.VerificationDeadline)
}

// interleavedStore runs between once, right after the first account read,
// to simulate a concurrent writer landing inside a read-modify-write.
type interleavedStore struct {
	store.Store
	between func()
	once    sync.Once
}

func (s *interleavedStore) Accounts() store.Accounts {
	return &interleavedAccounts{Accounts: s.Store.Accounts(), s: s}
}

type interleavedAccounts struct {
	store.Accounts
	s *interleavedStore
}

func (a *interleavedAccounts) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	acc, err := a.Accounts.FindByEmail(ctx, email)
	a.s.once.Do(a.s.between)
	return acc, err
}

func (a *interleavedAccounts) FindByID(ctx context.Context, id string) (domain.Account, error) {
	acc, err := a.Accounts.FindByID(ctx, id)
	a.s.once.Do(a.s.between)
	return acc, err
}

func TestRecoverKeepsConcurrentVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.lifecycle.Register(ctx, "race@x.com", "s1")
	require.NoError(t, err)
	code, err := env.lifecycle.SendCode(ctx, "race@x.com")
	require.NoError(t, err)

	racing := *env.lifecycle
	racing.Store = &interleavedStore{
		Store: env.store,
		between: func() {
			require.NoError(t, env.lifecycle.CheckCode(ctx, "race@x.com", code))
		},
	}
	require.NoError(t, racing.RecoverViaTemporaryCredential(ctx, "race@x.com"))

	stored, err := env.store.Accounts().FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, stored.Verified)
	require.Nil(t, stored.VerificationDeadline)
	require.True(t, stored.MustChangeCredential)

	env.clock.Advance(DefaultVerificationGrace + time.Second)
	require.Equal(t, 0, env.sweeper.Sweep(ctx).Reclaimed)

	_, err = env.lifecycle.Login(ctx, "race@x.com", env.notifier.temp("race@x.com"))
	require.NoError(t, err)
}

func TestResetWithOldCredentialKeepsConcurrentVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.lifecycle.Register(ctx, "race2@x.com", "s1")
	require.NoError(t, err)
	code, err := env.lifecycle.SendCode(ctx, "race2@x.com")
	require.NoError(t, err)

	racing := *env.lifecycle
	racing.Store = &interleavedStore{
		Store: env.store,
		between: func() {
			require.NoError(t, env.lifecycle.CheckCode(ctx, "race2@x.com", code))
		},
	}
	require.NoError(t, racing.ResetWithOldCredential(ctx, acc.ID, "s1", "s2"))

	stored, err := env.store.Accounts().FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, stored.Verified)
	require.Nil(t, stored.VerificationDeadline)

	env.clock.Advance(DefaultVerificationGrace + time.Second)
	require.Equal(t, 0, env.sweeper.Sweep(ctx).Reclaimed)

	_, err = env.lifecycle.Login(ctx, "race2@x.com", "s2")
	require.NoError(t, err)
}

func TestResetWithCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.lifecycle.Register(ctx, "rc@x.com", "s1")
	require.NoError(t, err)

	code, err := env.lifecycle.SendCode(ctx, "ghost@x.com")
	require.NoError(t, err)
	require.ErrorIs(t, env.lifecycle.ResetWithCode(ctx, "ghost@x.com", code, "s2"), ErrAccountNotFound)

	code, err = env.lifecycle.SendCode(ctx, "rc@x.com")
	require.NoError(t, err)

	wrong := "999999"
	if code == wrong {
		wrong = "999998"
	}
	require.ErrorIs(t, env.lifecycle.ResetWithCode(ctx, "rc@x.com", wrong, "s2"), ErrCodeInvalidOrExpired)

	require.NoError(t, env.lifecycle.ResetWithCode(ctx, "rc@x.com", code, "s2"))
	require.ErrorIs(t, env.lifecycle.ResetWithCode(ctx, "rc@x.com", code, "s3"), ErrCodeInvalidOrExpired)

	summary, err := env.lifecycle.AccountSummary(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, summary.Verified)
	require.Nil(t, summary.VerificationDeadline)

	_, err = env.lifecycle.Login(ctx, "rc@x.com", "s2")
	require.NoError(t, err)
}

func TestAccountSummaryForVanishedAccount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.lifecycle.AccountSummary(context.Background(), "01J0000000000000000000000")
	require.ErrorIs(t, err, ErrAccountNotFound)
	_, err = env.lifecycle.AccountSummary(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestScenarioRegisterVerifyLoginResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acc, err := env.lifecycle.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	code, err := env.lifecycle.SendCode(ctx, "a@x.com")
	require.NoError(t, err)
	require.Regexp(t, sixDigits, code)

	require.NoError(t, env.lifecycle.CheckCode(ctx, "a@x.com", code))

	sess, err := env.lifecycle.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	id, ok := env.gateway.Resolve("Bearer " + sess.Token)
	require.True(t, ok)
	require.Equal(t, acc.ID, id)
}

func TestScenarioAbandonedSignupIsReclaimed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	old, err := env.lifecycle.Register(ctx, "b@x.com", "s1")
	require.NoError(t, err)

	env.clock.Advance(DefaultVerificationGrace + time.Second)
	res := env.sweeper.Sweep(ctx)
	require.Equal(t, 1, res.Reclaimed)

	_, err = env.store.Accounts().FindByEmail(ctx, "b@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.store.Profiles().Get(ctx, old.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	fresh, err := env.lifecycle.Register(ctx, "b@x.com", "s2")
	require.NoError(t, err)
	require.NotEqual(t, old.ID, fresh.ID)

	stored, err := env.store.Accounts().FindByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	require.False(t, stored.Verified)
	require.Equal(t, fresh.ID, stored.ID)
}
