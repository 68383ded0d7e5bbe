package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yli59577/puyuann/internal/identity/store/drivers/sqlite"
	"github.com/yli59577/puyuann/pkg/clockx"
	"github.com/yli59577/puyuann/pkg/cryptox"
	"github.com/yli59577/puyuann/pkg/jwtx"
	"github.com/yli59577/puyuann/pkg/slogx"
)

const testIssuer = "identity-test"

var testStart = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// recordingNotifier captures deliveries. Set fail to simulate an outage.
type recordingNotifier struct {
	mu    sync.Mutex
	codes map[string][]string
	temps map[string]string
	fail  error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		codes: map[string][]string{},
		temps: map[string]string{},
	}
}

func (n *recordingNotifier) DeliverVerificationCode(_ context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.codes[email] = append(n.codes[email], code)
	return nil
}

func (n *recordingNotifier) DeliverTemporaryCredential(_ context.Context, email, credential string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.temps[email] = credential
	return nil
}

func (n *recordingNotifier) temp(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.temps[email]
}

var errMailDown = errors.New("smtp: connection refused")

type testEnv struct {
	store       *sqlite.Store
	clock       *clockx.Manual
	credentials *CredentialService
	ledger      *VerificationLedger
	lifecycle   *IdentityLifecycle
	gateway     *AuthGateway
	sweeper     *ExpirySweeper
	notifier    *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := clockx.NewManual(testStart)

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	creds := &CredentialService{
		Hasher:   cryptox.NewPasswordHasher("test-pepper"),
		Signer:   signer,
		Verifier: jwtx.NewVerifierEdDSA(keys, testIssuer, clock.Now),
		Clock:    clock,
		Issuer:   testIssuer,
	}
	ledger := &VerificationLedger{Store: st, Clock: clock, Window: DefaultCodeWindow}
	notifier := newRecordingNotifier()

	return &testEnv{
		store:       st,
		clock:       clock,
		credentials: creds,
		ledger:      ledger,
		lifecycle: &IdentityLifecycle{
			Store:       st,
			Credentials: creds,
			Ledger:      ledger,
			Notifier:    notifier,
			Clock:       clock,
			Grace:       DefaultVerificationGrace,
			SessionTTL:  jwtx.DefaultSessionTTL,
		},
		gateway:  &AuthGateway{Credentials: creds},
		sweeper:  NewExpirySweeper(st, clock, slogx.Discard(), time.Hour, 0),
		notifier: notifier,
	}
}

// registerVerified walks email through register, sendCode and checkCode.
func (e *testEnv) registerVerified(t *testing.T, email, secret string) string {
	t.Helper()
	ctx := context.Background()

	acc, err := e.lifecycle.Register(ctx, email, secret)
	require.NoError(t, err)
	code, err := e.lifecycle.SendCode(ctx, email)
	require.NoError(t, err)
	require.NoError(t, e.lifecycle.CheckCode(ctx, email, code))
	return acc.ID
}
