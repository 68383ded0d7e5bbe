package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/yli59577/puyuann/internal/identity/store"
	"github.com/yli59577/puyuann/internal/identity/store/storetest"
)

// startPostgres runs a throwaway postgres container and returns its DSN.
// Tests skip when docker is unavailable or -short is set.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "identity",
			"POSTGRES_PASSWORD": "identity",
			"POSTGRES_DB":       "identity",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("postgres://identity:identity@%s:%s/identity?sslmode=disable", host, mappedPort.Port())
}

func TestStore(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	st, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.ApplyMigrations())

	storetest.Run(t, func(t *testing.T) store.Store {
		_, err := st.db.ExecContext(ctx, `TRUNCATE profiles, verification_tickets, accounts`)
		require.NoError(t, err)
		return st
	})
}
