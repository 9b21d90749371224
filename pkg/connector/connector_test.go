package connector

import (
	"context"
	"database/sql"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/David-Botos/irma-ingress/pkg/config"
)

func unreachablePostgres() *config.PostgresConfig {
	return &config.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     1,
		Database: "irma",
		User:     "irma",
		Password: "secret",
		SSLMode:  "disable",
	}
}

func openUnconnected(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(PostgresDriver, unreachablePostgres().ConnectionString())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSizePool(t *testing.T) {
	db := openUnconnected(t)
	sizePool(db, config.PoolConfig{MaxOpen: 7, MaxIdle: 2, MaxLifetime: time.Minute})

	stats := db.Stats()
	assert.Equal(t, 7, stats.MaxOpenConnections)
	assert.Zero(t, stats.OpenConnections)
	assert.Zero(t, stats.InUse)
}

func TestPoolLogStats(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	db := openUnconnected(t)
	sizePool(db, config.PoolConfig{MaxOpen: 3})

	p := &pool{db: db, database: "irma", logger: zap.New(core)}
	p.logStats()

	entries := logs.FilterMessage("Connection pool stats").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "irma", fields["database"])
	assert.Equal(t, int64(3), fields["max_open"])

	require.NoError(t, p.Close())
	assert.Equal(t, 1, logs.FilterMessage("Closing connection pool").Len())
}

func TestDialUnreachable(t *testing.T) {
	db, err := dial(context.Background(), PostgresDriver, unreachablePostgres().ConnectionString(),
		config.PoolConfig{}, 2*time.Second)
	assert.Error(t, err)
	assert.Nil(t, db)

	_, err = NewPostgresConnector(context.Background(), unreachablePostgres())
	assert.ErrorContains(t, err, "127.0.0.1:1")
}

func TestPostgresDSN(t *testing.T) {
	cfg := unreachablePostgres()
	assert.Equal(t, cfg.ConnectionString(), postgresDSN(cfg))

	cfg.StatementTimeout = 90 * time.Second
	assert.Equal(t, cfg.ConnectionString()+" statement_timeout=90000", postgresDSN(cfg))
}

func TestSnowflakeDSN(t *testing.T) {
	cfg := &config.SnowflakeConfig{
		User:         "loader",
		Password:     "secret",
		Account:      "acme-eu",
		Warehouse:    "LOAD_WH",
		Database:     "IRMA",
		Schema:       "PUBLIC",
		QueryTimeout: 5 * time.Minute,
	}

	dsn, err := snowflakeDSN(cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "loader:secret@"))

	query, err := url.ParseQuery(dsn[strings.Index(dsn, "?")+1:])
	require.NoError(t, err)
	assert.Equal(t, "300", query.Get("STATEMENT_TIMEOUT_IN_SECONDS"))
	assert.Equal(t, "LOAD_WH", query.Get("warehouse"))
}

func TestFactoryRequiresConfig(t *testing.T) {
	factory := NewConnectorFactory(&config.Config{}, nil)

	_, err := factory.CreateSnowflakeConnector(context.Background())
	assert.ErrorContains(t, err, "snowflake is not configured")

	_, err = factory.CreatePostgresConnector(context.Background())
	assert.ErrorContains(t, err, "postgreSQL is not configured")
}
