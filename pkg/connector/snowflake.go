// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/config"
)

// SnowflakeConnector is the pool the label tables are read through
type SnowflakeConnector struct {
	*pool
	cfg *config.SnowflakeConfig
}

// NewSnowflakeConnector connects to the configured Snowflake account
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig) (*SnowflakeConnector, error) {
	logger := zap.L().Named("snowflake-connector")
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := snowflakeDSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := dial(ctx, "snowflake", dsn, cfg.Pool, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Snowflake account %s: %w", cfg.Account, err)
	}

	c := &SnowflakeConnector{
		pool: &pool{db: db, database: cfg.Database, logger: logger},
		cfg:  cfg,
	}
	c.logStats()
	return c, nil
}

// snowflakeDSN renders cfg for the gosnowflake driver. The query timeout is
// passed as a session parameter so every connection of the pool carries it.
func snowflakeDSN(cfg *config.SnowflakeConfig) (string, error) {
	params := map[string]*string{}
	if cfg.QueryTimeout > 0 {
		seconds := strconv.Itoa(int(cfg.QueryTimeout.Seconds()))
		params["STATEMENT_TIMEOUT_IN_SECONDS"] = &seconds
	}

	return sf.DSN(&sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Schema:        cfg.Schema,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.Authenticator,
		Params:        params,
	})
}

// Validate checks that the session landed in the configured database
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	var role, database, warehouse sql.NullString
	row := c.db.QueryRowContext(ctx, "SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()")
	if err := row.Scan(&role, &database, &warehouse); err != nil {
		return fmt.Errorf("failed to query Snowflake session: %w", err)
	}

	if !strings.EqualFold(database.String, c.cfg.Database) {
		return fmt.Errorf("session uses database %q, want %q", database.String, c.cfg.Database)
	}

	c.logger.Info("Snowflake ready",
		zap.String("role", role.String),
		zap.String("database", database.String),
		zap.String("warehouse", warehouse.String))
	return nil
}
