// Package postgres implements the PostgreSQL datasource adapter on top
// of pgx connection pools.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource"
	"github.com/tablediff-io/tablediff-engine/pkg/apperrors"
)

// Adapter reads schema metadata and aggregate metrics from one
// PostgreSQL connection. The pool is shared through the connection
// manager and survives Close.
type Adapter struct {
	pool       *pgxpool.Pool
	descriptor string
	logger     *zap.Logger
}

// NewAdapter resolves a pooled connection for the descriptor.
func NewAdapter(ctx context.Context, descriptor string, connMgr *datasource.ConnectionManager, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := connMgr.GetOrCreatePostgresPool(ctx, descriptor)
	if err != nil {
		return nil, apperrors.ConnectionFailed(descriptor, err)
	}

	return &Adapter{
		pool:       pool,
		descriptor: descriptor,
		logger:     logger,
	}, nil
}

// TestConnection verifies the pool with a bounded ping.
func (a *Adapter) TestConnection(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.pool.Ping(pingCtx); err != nil {
		return apperrors.ConnectionFailed(a.descriptor, err)
	}
	return nil
}

// Close releases the adapter. The pool stays in the connection manager
// until its TTL expires.
func (a *Adapter) Close() error {
	return nil
}
