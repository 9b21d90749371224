// pkg/config/database.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// PoolConfig sizes a database/sql pool. Zero values keep the driver defaults.
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// SnowflakeConfig locates the warehouse holding the label tables
type SnowflakeConfig struct {
	User          string `env:"SNOWFLAKE_USER" validate:"required"`
	Password      string `env:"SNOWFLAKE_PASSWORD"`
	Account       string `env:"SNOWFLAKE_ACCOUNT" validate:"required"`
	Warehouse     string `env:"SNOWFLAKE_WAREHOUSE" validate:"required"`
	Database      string
	Schema        string
	Role          string
	Authenticator gosnowflake.AuthType

	Pool         PoolConfig
	QueryTimeout time.Duration `env:"SNOWFLAKE_QUERY_TIMEOUT_SECONDS" validate:"gt=0"`
}

// PostgresConfig locates the database the dataset is persisted to
type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" validate:"required,hostname_rfc1123|ip"`
	Port     int    `env:"POSTGRES_PORT" validate:"min=1,max=65535"`
	User     string `env:"POSTGRES_USER" validate:"required"`
	Password string `env:"POSTGRES_PASSWORD"`
	Database string `env:"POSTGRES_DB" validate:"required"`
	Schema   string `env:"IRMA_POSTGRES_SCHEMA" validate:"required,max=63"`
	SSLMode  string `env:"POSTGRES_SSLMODE" validate:"oneof=disable allow prefer require verify-ca verify-full"`

	Pool             PoolConfig
	StatementTimeout time.Duration
}

// LoadSnowflakeConfig reads the SNOWFLAKE_* variables
func LoadSnowflakeConfig() (*SnowflakeConfig, error) {
	creds, err := requireEnv("SNOWFLAKE_USER", "SNOWFLAKE_PASSWORD", "SNOWFLAKE_ACCOUNT", "SNOWFLAKE_WAREHOUSE")
	if err != nil {
		return nil, err
	}

	return &SnowflakeConfig{
		User:          creds[0],
		Password:      creds[1],
		Account:       creds[2],
		Warehouse:     creds[3],
		Database:      getEnv("SNOWFLAKE_DATABASE", "IRMA"),
		Schema:        getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
		Role:          getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator: parseAuthenticator(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake")),
		Pool: loadPoolConfig("SNOWFLAKE", PoolConfig{
			MaxOpen:     4,
			MaxIdle:     2,
			MaxLifetime: 10 * time.Minute,
			MaxIdleTime: 5 * time.Minute,
		}),
		QueryTimeout: getEnvAsSeconds("SNOWFLAKE_QUERY_TIMEOUT_SECONDS", 5*time.Minute),
	}, nil
}

var authenticators = map[string]gosnowflake.AuthType{
	"oauth":                 gosnowflake.AuthTypeOAuth,
	"externalbrowser":       gosnowflake.AuthTypeExternalBrowser,
	"username_password_mfa": gosnowflake.AuthTypeUsernamePasswordMFA,
	"jwt":                   gosnowflake.AuthTypeJwt,
	"token":                 gosnowflake.AuthTypeTokenAccessor,
	"okta":                  gosnowflake.AuthTypeOkta,
}

// parseAuthenticator maps SNOWFLAKE_AUTHENTICATOR to a driver auth type,
// falling back to password authentication
func parseAuthenticator(name string) gosnowflake.AuthType {
	if auth, ok := authenticators[strings.ToLower(name)]; ok {
		return auth
	}
	return gosnowflake.AuthTypeSnowflake
}

// LoadPostgresConfig reads the POSTGRES_* variables
func LoadPostgresConfig() (*PostgresConfig, error) {
	creds, err := requireEnv("POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB")
	if err != nil {
		return nil, err
	}

	return &PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnvAsInt("POSTGRES_PORT", 5432),
		User:     creds[0],
		Password: creds[1],
		Database: creds[2],
		Schema:   getEnv("IRMA_POSTGRES_SCHEMA", "irma"),
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		Pool: loadPoolConfig("POSTGRES", PoolConfig{
			MaxOpen:     10,
			MaxIdle:     5,
			MaxLifetime: 30 * time.Minute,
			MaxIdleTime: 10 * time.Minute,
		}),
		StatementTimeout: getEnvAsSeconds("POSTGRES_STATEMENT_TIMEOUT_SECONDS", 5*time.Minute),
	}, nil
}

// ConnectionString renders the keyword/value DSN understood by pgx and lib/pq
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// loadPoolConfig reads <prefix>_MAX_OPEN_CONNS, <prefix>_MAX_IDLE_CONNS,
// <prefix>_CONN_MAX_LIFETIME_SECONDS and <prefix>_CONN_MAX_IDLE_TIME_SECONDS
func loadPoolConfig(prefix string, defaults PoolConfig) PoolConfig {
	return PoolConfig{
		MaxOpen:     getEnvAsInt(prefix+"_MAX_OPEN_CONNS", defaults.MaxOpen),
		MaxIdle:     getEnvAsInt(prefix+"_MAX_IDLE_CONNS", defaults.MaxIdle),
		MaxLifetime: getEnvAsSeconds(prefix+"_CONN_MAX_LIFETIME_SECONDS", defaults.MaxLifetime),
		MaxIdleTime: getEnvAsSeconds(prefix+"_CONN_MAX_IDLE_TIME_SECONDS", defaults.MaxIdleTime),
	}
}

// requireEnv returns the values of keys in order and names the first one
// that is unset
func requireEnv(keys ...string) ([]string, error) {
	values := make([]string, len(keys))
	for i, key := range keys {
		values[i] = os.Getenv(key)
		if values[i] == "" {
			return nil, fmt.Errorf("%s environment variable is required", key)
		}
	}
	return values, nil
}
