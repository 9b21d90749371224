// pkg/connector/postgres.go
package connector

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/config"
)

// PostgresDriver is the database/sql driver registered by pgx
const PostgresDriver = "pgx"

// PostgresConnector is the pool the dataset is persisted through
type PostgresConnector struct {
	*pool
	cfg *config.PostgresConfig
}

// NewPostgresConnector connects to the configured PostgreSQL server
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig) (*PostgresConnector, error) {
	logger := zap.L().Named("postgres-connector")
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := dial(ctx, PostgresDriver, postgresDSN(cfg), cfg.Pool, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	c := &PostgresConnector{
		pool: &pool{db: db, database: cfg.Database, logger: logger},
		cfg:  cfg,
	}
	c.logStats()
	return c, nil
}

// postgresDSN adds the statement timeout as a runtime parameter, which pgx
// sends at startup of every pooled connection
func postgresDSN(cfg *config.PostgresConfig) string {
	dsn := cfg.ConnectionString()
	if cfg.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", cfg.StatementTimeout.Milliseconds())
	}
	return dsn
}

// Validate reports the server version and makes sure the target schema exists
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}

	if err := c.EnsureSchema(ctx, c.cfg.Schema); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", c.cfg.Schema, err)
	}

	c.logger.Info("PostgreSQL ready",
		zap.String("version", version),
		zap.String("database", c.cfg.Database),
		zap.String("schema", c.cfg.Schema))
	return nil
}

// EnsureSchema creates schema unless it already exists
func (c *PostgresConnector) EnsureSchema(ctx context.Context, schema string) error {
	_, err := c.ExecWithTimeout(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(schema), 30*time.Second)
	return err
}
