//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

/* postgres:16 container for the sink integration tests
 * The same Params the api reads from PG* variables are used to reach it,
 * so ConnectionString is exercised against a real server
 */

// PostgresContainer carries the running container and an admin connection for assertions
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
	ConnStr   string
}

// SetupPostgresContainer starts the container; call the returned func to terminate it
func SetupPostgresContainer(t *testing.T, ctx context.Context) (*PostgresContainer, func()) {
	t.Helper()

	c, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("webhooks"),
		tcpostgres.WithUsername("webhook"),
		tcpostgres.WithPassword("webhook"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "starting postgres container")

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	params := Params{
		User:     "webhook",
		Password: "webhook",
		Host:     host,
		Port:     port.Int(),
		Database: "webhooks",
	}
	connStr := params.ConnectionString()

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))

	return &PostgresContainer{Container: c, DB: db, ConnStr: connStr}, func() {
		_ = db.Close()
		if err := c.Terminate(ctx); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	}
}

// CreateTestSink opens a migrated sink against the container
func CreateTestSink(t *testing.T, ctx context.Context, connStr string) *Sink {
	t.Helper()

	sink, err := Open(connStr)
	require.NoError(t, err)
	require.NoError(t, sink.Migrate(ctx))
	t.Cleanup(func() { _ = sink.Close(context.Background()) })

	return sink
}

// AssertRecordCount checks how many rows webhook_records holds
func AssertRecordCount(t *testing.T, ctx context.Context, db *sql.DB, expected int) {
	t.Helper()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM webhook_records").Scan(&count))
	require.Equal(t, expected, count)
}
