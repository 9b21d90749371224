// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/config"
)

// ConnectorFactory opens the connectors a run asks for, using the sections
// of the application config
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectorFactory{cfg: cfg, logger: logger}
}

// CreateSnowflakeConnector opens the label source warehouse
func (f *ConnectorFactory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	if f.cfg.Snowflake == nil {
		return nil, notConfigured("snowflake")
	}
	f.logger.Info("Opening connector", zap.String("backend", "snowflake"))

	c, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake)
	if err != nil {
		return nil, fmt.Errorf("snowflake connector: %w", err)
	}
	return c, nil
}

// CreatePostgresConnector opens the persistence database
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	if f.cfg.Postgres == nil {
		return nil, notConfigured("postgreSQL")
	}
	f.logger.Info("Opening connector", zap.String("backend", "postgres"))

	c, err := NewPostgresConnector(ctx, f.cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("postgres connector: %w", err)
	}
	return c, nil
}

func notConfigured(backend string) error {
	return fmt.Errorf("%s is not configured", backend)
}
