package datasource

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConnector abstracts a pooled database connection regardless of
// the underlying driver.
type PoolConnector interface {
	Ping(ctx context.Context) error
	Close() error
	Driver() string
}

// PostgresPoolWrapper wraps *pgxpool.Pool to implement PoolConnector
type PostgresPoolWrapper struct {
	pool *pgxpool.Pool
}

// NewPostgresPoolWrapper creates a new PostgreSQL pool wrapper
func NewPostgresPoolWrapper(pool *pgxpool.Pool) *PostgresPoolWrapper {
	return &PostgresPoolWrapper{pool: pool}
}

// Ping verifies the PostgreSQL connection is alive
func (w *PostgresPoolWrapper) Ping(ctx context.Context) error {
	return w.pool.Ping(ctx)
}

// Close closes all connections in the PostgreSQL pool
func (w *PostgresPoolWrapper) Close() error {
	w.pool.Close()
	return nil
}

// Driver returns the driver name
func (w *PostgresPoolWrapper) Driver() string {
	return "postgres"
}

// GetPool returns the underlying *pgxpool.Pool
func (w *PostgresPoolWrapper) GetPool() *pgxpool.Pool {
	return w.pool
}

// SQLPoolWrapper wraps *sql.DB to implement PoolConnector. It serves
// every database/sql based driver (mysql, sqlserver).
type SQLPoolWrapper struct {
	db     *sql.DB
	driver string
}

// NewSQLPoolWrapper creates a new database/sql pool wrapper
func NewSQLPoolWrapper(db *sql.DB, driver string) *SQLPoolWrapper {
	return &SQLPoolWrapper{db: db, driver: driver}
}

// Ping verifies the connection is alive
func (w *SQLPoolWrapper) Ping(ctx context.Context) error {
	return w.db.PingContext(ctx)
}

// Close closes all connections in the pool
func (w *SQLPoolWrapper) Close() error {
	return w.db.Close()
}

// Driver returns the driver name
func (w *SQLPoolWrapper) Driver() string {
	return w.driver
}

// GetDB returns the underlying *sql.DB
func (w *SQLPoolWrapper) GetDB() *sql.DB {
	return w.db
}
