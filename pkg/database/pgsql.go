package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig tunes the pool and the connect retry loop. Zero values take defaults.
type PoolConfig struct {
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.MaxConns <= 0 {
		c.MaxConns = 10
	}
	if c.MinConns < 0 {
		c.MinConns = 0
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	return c
}

// NewPgxPool creates a new PostgreSQL connection pool.
// With enableCheck the pool is pinged, and creation is retried with doubling delays until it answers.
func NewPgxPool(ctx context.Context, databaseURL string, enableCheck bool, poolCfg PoolConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	poolCfg = poolCfg.withDefaults()

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}
	config.MaxConns = poolCfg.MaxConns
	config.MinConns = poolCfg.MinConns
	config.ConnConfig.ConnectTimeout = poolCfg.ConnectTimeout
	config.ConnConfig.RuntimeParams["application_name"] = "fx-reference-rates"

	if !enableCheck {
		pool, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		return pool, nil
	}

	delay := poolCfg.RetryDelay
	for attempt := 1; attempt <= poolCfg.RetryAttempts; attempt++ {
		var pool *pgxpool.Pool
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				logger.Info("Successfully connected to PostgreSQL database.", slog.Int("attempt", attempt))
				return pool, nil
			}
			pool.Close()
		}

		logger.Warn("Database not reachable yet", slog.Int("attempt", attempt), slog.String("error", err.Error()))
		if attempt == poolCfg.RetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up connecting to database: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", poolCfg.RetryAttempts, err)
}

// ClosePgxPool closes the PostgreSQL connection pool.
func ClosePgxPool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
		slog.Info("PostgreSQL connection pool closed.")
	}
}
