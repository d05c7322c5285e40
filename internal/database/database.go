// Package database builds the pgx connection pool shared by all repositories.
package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spinworks/draw10/internal/logger"
)

// Pool is the subset of pgxpool.Pool the HTTP readiness probe needs.
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// NewPool connects to PostgreSQL and verifies the connection. Settlement
// transactions hold row locks, so the pool is sized explicitly rather than
// left at the pgx default.
func NewPool(ctx context.Context, connString string, maxConns int, maxIdle, maxLife time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}

	if maxConns > math.MaxInt32 {
		maxConns = math.MaxInt32
	}
	config.MaxConns = int32(maxConns)
	config.MinConns = DefaultMinConnections
	config.MaxConnIdleTime = maxIdle
	config.MaxConnLifetime = maxLife

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	logger.FromContext(ctx).Info(LogMsgSuccessfullyConnectedToDatabase,
		"maxConns", maxConns)
	return pool, nil
}
