// Package mssql implements the SQL Server datasource adapter on top of
// database/sql with the go-mssqldb driver.
package mssql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource"
	"github.com/tablediff-io/tablediff-engine/pkg/apperrors"
)

// Adapter reads schema metadata and aggregate metrics from one SQL
// Server connection. The *sql.DB is shared through the connection
// manager and survives Close.
type Adapter struct {
	db         *sql.DB
	descriptor string
	logger     *zap.Logger
}

// NewAdapter resolves a pooled connection for the descriptor. The
// go-mssqldb driver accepts sqlserver:// URLs directly, so the
// descriptor passes through unchanged.
func NewAdapter(ctx context.Context, descriptor string, connMgr *datasource.ConnectionManager, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := connMgr.GetOrCreateSQLDB(ctx, "sqlserver", descriptor)
	if err != nil {
		return nil, apperrors.ConnectionFailed(descriptor, err)
	}

	return &Adapter{
		db:         db,
		descriptor: descriptor,
		logger:     logger,
	}, nil
}

// TestConnection verifies the pool with a bounded ping.
func (a *Adapter) TestConnection(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.db.PingContext(pingCtx); err != nil {
		return apperrors.ConnectionFailed(a.descriptor, err)
	}
	return nil
}

// Close releases the adapter. The pool stays in the connection manager
// until its TTL expires.
func (a *Adapter) Close() error {
	return nil
}

// quoteIdent bracket-quotes an identifier, doubling embedded closing
// brackets.
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
