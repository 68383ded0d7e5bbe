package app

import (
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"

	"github.com/yli59577/puyuann/pkg/identitysdk"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(env.Options{Environment: map[string]string{}})
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "identity.db", cfg.DatabaseURL)
	require.Equal(t, "Asia/Taipei", cfg.Timezone)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 5*time.Minute, cfg.VerificationGrace)
	require.Equal(t, 10*time.Minute, cfg.CodeWindow)
	require.Equal(t, time.Minute, cfg.SweepInterval)
	require.Equal(t, 24*time.Hour, cfg.TicketRetention)
	require.Empty(t, cfg.SMTP.Host)
	require.Equal(t, 587, cfg.SMTP.Port)
	require.Equal(t, 4, cfg.SMTP.MaxConns)
	require.InDelta(t, 5.0, cfg.MailRatePerSecond, 0.0001)
}

func TestParseConfigOverrides(t *testing.T) {
	cfg, err := parseConfig(env.Options{Environment: map[string]string{
		"PORT":             "9090",
		"DATABASE_DRIVER":  "postgres",
		"DATABASE_URL":     "postgres://identity@localhost/identity",
		"CODE_WINDOW":      "15m",
		"TICKET_RETENTION": "0s",
		"SMTP_HOST":        "smtp.example.com",
		"SMTP_FROM":        "no-reply@example.com",
		"SMTP_PORT":        "2525",
	}})
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, 15*time.Minute, cfg.CodeWindow)
	require.Zero(t, cfg.TicketRetention)
	require.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	require.Equal(t, 2525, cfg.SMTP.Port)
}

func TestParseConfigRejectsBadValues(t *testing.T) {
	_, err := parseConfig(env.Options{Environment: map[string]string{"SESSION_TTL": "soon"}})
	require.Error(t, err)

	_, err = parseConfig(env.Options{Environment: map[string]string{"DATABASE_DRIVER": "mysql"}})
	require.ErrorContains(t, err, "DATABASE_DRIVER")

	_, err = parseConfig(env.Options{Environment: map[string]string{"SMTP_HOST": "smtp.example.com"}})
	require.ErrorContains(t, err, "SMTP_FROM")

	_, err = parseConfig(env.Options{Environment: map[string]string{
		"CODE_WINDOW":    "0s",
		"SWEEP_INTERVAL": "-1s",
	}})
	require.ErrorContains(t, err, "CODE_WINDOW")
	require.ErrorContains(t, err, "SWEEP_INTERVAL")
}

func TestSQLiteDSN(t *testing.T) {
	require.Equal(t, ":memory:", sqliteDSN(":memory:"))
	require.Equal(t, "file:x.db?mode=ro", sqliteDSN("file:x.db?mode=ro"))
	require.Contains(t, sqliteDSN("data/identity.db"), "file:data/identity.db?")
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	cfg, err := parseConfig(env.Options{Environment: map[string]string{
		"LOG_LEVEL":        "error",
		"TIMEZONE":         "UTC",
		"DATABASE_URL":     filepath.Join(dir, "identity.db"),
		"PEPPER_FILE":      filepath.Join(dir, "pepper"),
		"SIGNING_KEY_FILE": filepath.Join(dir, "signing.pem"),
	}})
	require.NoError(t, err)
	return cfg
}

func TestApplicationServesRequests(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	app.start()
	t.Cleanup(func() { require.NoError(t, app.Shutdown()) })

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	client := identitysdk.NewClient(srv.URL)
	ctx := t.Context()

	ready, err := client.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, BuildVersion, ready.Version)

	_, err = client.Register(ctx, identitysdk.RegisterRequest{Email: "bob@example.com", Password: "hunter22"})
	require.NoError(t, err)

	sent, err := client.SendCode(ctx, "bob@example.com")
	require.NoError(t, err)
	require.NoError(t, client.CheckCode(ctx, identitysdk.CheckCodeRequest{Email: "bob@example.com", Code: sent.Code}))

	login, err := client.Login(ctx, identitysdk.LoginRequest{Email: "bob@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.Equal(t, int((24 * time.Hour).Seconds()), login.ExpiresIn)
}

func TestApplicationReusesKeyMaterial(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg)
	require.NoError(t, err)
	kid := first.keys.signer.KID()
	require.NoError(t, first.Shutdown())

	second, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Shutdown() })

	require.Equal(t, kid, second.keys.signer.KID())
}

func TestApplicationRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timezone = "Mars/Olympus_Mons"

	_, err := New(cfg)
	require.ErrorContains(t, err, "timezone")
}

func TestApplicationHidesCodesOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "prod"

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown() })

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	client := identitysdk.NewClient(srv.URL)
	ctx := t.Context()

	_, err = client.Register(ctx, identitysdk.RegisterRequest{Email: "eve@example.com", Password: "hunter22"})
	require.NoError(t, err)

	sent, err := client.SendCode(ctx, "eve@example.com")
	require.NoError(t, err)
	require.Equal(t, identitysdk.StatusOK, sent.Status)
	require.Empty(t, sent.Code)
}
