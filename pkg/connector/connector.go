// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/irma-ingress/pkg/config"
)

// DatabaseConnector is an open, pinged connection pool to one database
type DatabaseConnector interface {
	DB() *sql.DB
	// Validate checks that the session reaches the configured database
	Validate(ctx context.Context) error
	Close() error
	ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error)
}

// pool carries the *sql.DB handling both connectors share. Embedding it
// supplies DB, ExecWithTimeout and Close.
type pool struct {
	db       *sql.DB
	database string
	logger   *zap.Logger
}

// dial opens a handle, sizes it and waits up to wait for the server to answer
// a ping. The handle is closed again if it never does.
func dial(ctx context.Context, driver, dsn string, settings config.PoolConfig, wait time.Duration) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	sizePool(db, settings)

	if err := ping(ctx, db, wait); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sizePool(db *sql.DB, settings config.PoolConfig) {
	if settings.MaxOpen > 0 {
		db.SetMaxOpenConns(settings.MaxOpen)
	}
	if settings.MaxIdle > 0 {
		db.SetMaxIdleConns(settings.MaxIdle)
	}
	if settings.MaxLifetime > 0 {
		db.SetConnMaxLifetime(settings.MaxLifetime)
	}
	if settings.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(settings.MaxIdleTime)
	}
}

func ping(ctx context.Context, db *sql.DB, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("no answer within %v: %w", wait, err)
	}
	return err
}

func (p *pool) DB() *sql.DB {
	return p.db
}

// ExecWithTimeout runs a statement that must finish within timeout
func (p *pool) ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.db.ExecContext(ctx, query, args...)
}

func (p *pool) Close() error {
	p.logger.Info("Closing connection pool", zap.String("database", p.database))
	p.logStats()
	return p.db.Close()
}

func (p *pool) logStats() {
	s := p.db.Stats()
	p.logger.Debug("Connection pool stats",
		zap.String("database", p.database),
		zap.Int("max_open", s.MaxOpenConnections),
		zap.Int("open", s.OpenConnections),
		zap.Int("in_use", s.InUse),
		zap.Int("idle", s.Idle),
		zap.Int64("waits", s.WaitCount),
		zap.Duration("waited", s.WaitDuration))
}
