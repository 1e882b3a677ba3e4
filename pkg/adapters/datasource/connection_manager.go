package datasource

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tablediff-io/tablediff-engine/pkg/logging"
	"github.com/tablediff-io/tablediff-engine/pkg/retry"
)

const (
	DefaultConnectionTTLMinutes = 5
	DefaultCleanupInterval      = 1 * time.Minute
	DefaultPoolMaxConns         = 10
	DefaultPoolMinConns         = 1
)

// ConnectionManagerConfig holds configuration for the connection manager
type ConnectionManagerConfig struct {
	TTLMinutes   int
	PoolMaxConns int32
	PoolMinConns int32
}

// ConnectionManager pools connections to customer databases with
// TTL-based expiry and automatic cleanup. Connections are keyed by
// driver plus a digest of the descriptor so credentials never appear
// in keys or logs.
type ConnectionManager struct {
	mu           sync.RWMutex
	connections  map[string]*ManagedConnection
	ttl          time.Duration
	poolMaxConns int32
	poolMinConns int32
	stopped      bool
	stopChan     chan struct{}
	logger       *zap.Logger
}

// ManagedConnection represents a pooled connection with its last use time
type ManagedConnection struct {
	connector PoolConnector
	lastUsed  time.Time
	mu        sync.Mutex // Per-connection mutex to prevent concurrent access issues
}

// NewConnectionManager creates a connection manager with the given configuration.
// Starts a background cleanup goroutine that runs until Close() is called.
func NewConnectionManager(cfg ConnectionManagerConfig, logger *zap.Logger) *ConnectionManager {
	if cfg.TTLMinutes <= 0 {
		cfg.TTLMinutes = DefaultConnectionTTLMinutes
	}
	if cfg.PoolMaxConns <= 0 {
		cfg.PoolMaxConns = DefaultPoolMaxConns
	}
	if cfg.PoolMinConns <= 0 {
		cfg.PoolMinConns = DefaultPoolMinConns
	}

	manager := &ConnectionManager{
		connections:  make(map[string]*ManagedConnection),
		ttl:          time.Duration(cfg.TTLMinutes) * time.Minute,
		poolMaxConns: cfg.PoolMaxConns,
		poolMinConns: cfg.PoolMinConns,
		stopChan:     make(chan struct{}),
		logger:       logger,
	}

	go manager.cleanupExpiredConnections()
	return manager
}

// connectionKey builds the map key for a descriptor. The descriptor is
// hashed so the key is loggable.
func connectionKey(driver, descriptor string) string {
	sum := sha256.Sum256([]byte(descriptor))
	return driver + ":" + hex.EncodeToString(sum[:])
}

// GetOrCreatePostgresPool returns a healthy pgx pool for the descriptor,
// creating it on first use. Unhealthy pools are recreated.
func (m *ConnectionManager) GetOrCreatePostgresPool(ctx context.Context, descriptor string) (*pgxpool.Pool, error) {
	key := connectionKey("postgres", descriptor)

	if connector, ok := m.checkExisting(ctx, key); ok {
		return connector.(*PostgresPoolWrapper).GetPool(), nil
	}

	connector, err := m.create(ctx, key, func() (PoolConnector, error) {
		poolConfig, err := pgxpool.ParseConfig(descriptor)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connection string: %w", err)
		}
		poolConfig.MaxConns = m.poolMaxConns
		poolConfig.MinConns = m.poolMinConns
		poolConfig.MaxConnIdleTime = m.ttl

		pool, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*pgxpool.Pool, error) {
			return pgxpool.NewWithConfig(ctx, poolConfig)
		})
		if err != nil {
			return nil, err
		}
		return NewPostgresPoolWrapper(pool), nil
	})
	if err != nil {
		return nil, err
	}
	return connector.(*PostgresPoolWrapper).GetPool(), nil
}

// GetOrCreateSQLDB returns a healthy *sql.DB for the driver and DSN,
// creating it on first use. Serves the mysql and sqlserver adapters.
func (m *ConnectionManager) GetOrCreateSQLDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	key := connectionKey(driver, dsn)

	if connector, ok := m.checkExisting(ctx, key); ok {
		return connector.(*SQLPoolWrapper).GetDB(), nil
	}

	connector, err := m.create(ctx, key, func() (PoolConnector, error) {
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
		}
		db.SetMaxOpenConns(int(m.poolMaxConns))
		db.SetMaxIdleConns(int(m.poolMinConns))
		db.SetConnMaxIdleTime(m.ttl)

		if err := retry.Do(ctx, retry.DefaultConfig(), func() error {
			return db.PingContext(ctx)
		}); err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewSQLPoolWrapper(db, driver), nil
	})
	if err != nil {
		return nil, err
	}
	return connector.(*SQLPoolWrapper).GetDB(), nil
}

// checkExisting returns the pooled connector for key after a health
// check. Unhealthy connections are removed so the caller recreates them.
func (m *ConnectionManager) checkExisting(ctx context.Context, key string) (PoolConnector, bool) {
	m.mu.RLock()
	managed, exists := m.connections[key]
	m.mu.RUnlock()

	if !exists {
		return nil, false
	}

	managed.mu.Lock()

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := retry.Do(healthCtx, retry.DefaultConfig(), func() error {
		return managed.connector.Ping(healthCtx)
	})
	if err != nil {
		m.logger.Warn("connection unhealthy, recreating",
			zap.String("key", key),
			zap.String("error", logging.SanitizeError(err)),
		)
		managed.mu.Unlock() // Unlock before calling removeConnection
		m.removeConnection(key)
		return nil, false
	}

	managed.lastUsed = time.Now()
	managed.mu.Unlock()
	return managed.connector, true
}

// create builds a connector via build and stores it under key.
// Caller must NOT hold any locks (this method acquires write lock).
func (m *ConnectionManager) create(ctx context.Context, key string, build func() (PoolConnector, error)) (PoolConnector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have created it)
	if managed, exists := m.connections[key]; exists && managed != nil {
		managed.mu.Lock()
		defer managed.mu.Unlock()
		managed.lastUsed = time.Now()
		return managed.connector, nil
	}

	connector, err := build()
	if err != nil {
		m.logger.Error("failed to create connection after retries",
			zap.String("key", key),
			zap.String("error", logging.SanitizeError(err)),
		)
		return nil, err
	}

	m.connections[key] = &ManagedConnection{
		connector: connector,
		lastUsed:  time.Now(),
	}

	m.logger.Info("created new connection pool",
		zap.String("key", key),
		zap.Int("totalConnections", len(m.connections)),
	)

	return connector, nil
}

// removeConnection removes a connection from the pool and closes it.
// Caller must NOT hold m.mu lock (this method acquires write lock).
func (m *ConnectionManager) removeConnection(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if managed, exists := m.connections[key]; exists && managed != nil {
		if managed.connector != nil {
			_ = managed.connector.Close()
		}
		delete(m.connections, key)
		m.logger.Debug("removed connection",
			zap.String("key", key),
		)
	}
}

// cleanupExpiredConnections runs periodically to remove expired connections.
// Runs in a background goroutine until stopChan is closed.
func (m *ConnectionManager) cleanupExpiredConnections() {
	ticker := time.NewTicker(DefaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.performCleanup()
		case <-m.stopChan:
			return
		}
	}
}

// performCleanup removes connections that haven't been used within TTL.
// Uses lock ordering: manager lock then connection lock to prevent deadlocks.
func (m *ConnectionManager) performCleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}

	now := time.Now()
	expiredKeys := []string{}

	for key, managed := range m.connections {
		if managed != nil {
			managed.mu.Lock()
			idleTime := now.Sub(managed.lastUsed)
			managed.mu.Unlock()

			if idleTime > m.ttl {
				expiredKeys = append(expiredKeys, key)
				m.logger.Debug("marking connection for cleanup",
					zap.String("key", key),
					zap.Duration("idleTime", idleTime),
					zap.Duration("ttl", m.ttl),
				)
			}
		}
	}

	for _, key := range expiredKeys {
		if managed, exists := m.connections[key]; exists && managed != nil {
			if managed.connector != nil {
				_ = managed.connector.Close()
			}
			delete(m.connections, key)
		}
	}

	if len(expiredKeys) > 0 {
		m.logger.Info("cleaned up expired connections",
			zap.Int("count", len(expiredKeys)),
			zap.Int("remaining", len(m.connections)),
		)
	}
}

// Close closes all connections in the manager and stops the cleanup goroutine.
// This method is idempotent and safe to call multiple times.
func (m *ConnectionManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return nil
	}

	m.stopped = true
	close(m.stopChan)

	for _, managed := range m.connections {
		if managed != nil && managed.connector != nil {
			_ = managed.connector.Close()
		}
	}

	m.connections = make(map[string]*ManagedConnection)
	m.logger.Info("connection manager closed")
	return nil
}

// GetStats returns statistics about the connection manager.
// Safe to call concurrently.
func (m *ConnectionManager) GetStats() ConnectionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	stats := ConnectionStats{
		TotalConnections:    len(m.connections),
		TTLMinutes:          int(m.ttl.Minutes()),
		ConnectionsByDriver: make(map[string]int),
		OldestIdleSeconds:   0,
	}

	for key, managed := range m.connections {
		// Key format: "{driver}:{descriptor digest}"
		if idx := strings.IndexByte(key, ':'); idx > 0 {
			stats.ConnectionsByDriver[key[:idx]]++
		}

		if managed != nil {
			managed.mu.Lock()
			idleSeconds := int(now.Sub(managed.lastUsed).Seconds())
			managed.mu.Unlock()
			if idleSeconds > stats.OldestIdleSeconds {
				stats.OldestIdleSeconds = idleSeconds
			}
		}
	}

	return stats
}

// ConnectionStats contains statistics about the connection manager state.
type ConnectionStats struct {
	TotalConnections    int            `json:"total_connections"`
	TTLMinutes          int            `json:"ttl_minutes"`
	ConnectionsByDriver map[string]int `json:"connections_by_driver"`
	OldestIdleSeconds   int            `json:"oldest_idle_seconds"`
}
