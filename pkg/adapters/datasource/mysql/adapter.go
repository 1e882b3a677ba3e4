// Package mysql implements the MySQL datasource adapter on top of
// database/sql with the go-sql-driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource"
	"github.com/tablediff-io/tablediff-engine/pkg/apperrors"
)

// Adapter reads schema metadata and aggregate metrics from one MySQL
// connection. The *sql.DB is shared through the connection manager and
// survives Close.
type Adapter struct {
	db         *sql.DB
	descriptor string
	logger     *zap.Logger
}

// NewAdapter resolves a pooled connection for the descriptor.
func NewAdapter(ctx context.Context, descriptor string, connMgr *datasource.ConnectionManager, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn, err := dsnFromDescriptor(descriptor)
	if err != nil {
		return nil, apperrors.ConnectionFailed(descriptor, err)
	}

	db, err := connMgr.GetOrCreateSQLDB(ctx, "mysql", dsn)
	if err != nil {
		return nil, apperrors.ConnectionFailed(descriptor, err)
	}

	return &Adapter{
		db:         db,
		descriptor: descriptor,
		logger:     logger,
	}, nil
}

// dsnFromDescriptor converts a mysql:// URL into the go-sql-driver DSN
// format ("user:pass@tcp(host:port)/db").
func dsnFromDescriptor(descriptor string) (string, error) {
	u, err := url.Parse(descriptor)
	if err != nil {
		return "", fmt.Errorf("invalid mysql descriptor: %w", err)
	}

	host := u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "3306")
	}

	cfg := gomysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	if u.User != nil {
		cfg.User = u.User.Username()
		if pass, ok := u.User.Password(); ok {
			cfg.Passwd = pass
		}
	}

	return cfg.FormatDSN(), nil
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

// quoteIdent backtick-quotes an identifier, doubling embedded backticks.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
