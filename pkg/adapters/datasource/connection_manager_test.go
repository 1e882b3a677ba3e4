package datasource

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeConnector struct {
	driver  string
	pingErr error

	mu     sync.Mutex
	closed bool
}

func (f *fakeConnector) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeConnector) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConnector) Driver() string { return f.driver }

func (f *fakeConnector) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestManager(t *testing.T, ttlMinutes int) *ConnectionManager {
	t.Helper()
	m := NewConnectionManager(ConnectionManagerConfig{TTLMinutes: ttlMinutes}, zap.NewNop())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestConnectionKeyHidesDescriptor(t *testing.T) {
	key := connectionKey("postgres", "postgresql://bob:hunter2@db:5432/sales")

	if strings.Contains(key, "hunter2") || strings.Contains(key, "bob") {
		t.Errorf("key leaks credentials: %q", key)
	}
	if !strings.HasPrefix(key, "postgres:") {
		t.Errorf("key should be prefixed with the driver: %q", key)
	}

	// same descriptor yields the same key, different descriptors differ
	if key != connectionKey("postgres", "postgresql://bob:hunter2@db:5432/sales") {
		t.Error("key is not deterministic")
	}
	if key == connectionKey("postgres", "postgresql://bob:hunter2@db:5432/other") {
		t.Error("distinct descriptors collide")
	}
}

func TestCreateAndReuseConnection(t *testing.T) {
	m := newTestManager(t, 5)

	built := 0
	build := func() (PoolConnector, error) {
		built++
		return &fakeConnector{driver: "fake"}, nil
	}

	ctx := context.Background()
	first, err := m.create(ctx, "fake:abc", build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reused, ok := m.checkExisting(ctx, "fake:abc")
	if !ok {
		t.Fatal("expected existing connection")
	}
	if reused != first {
		t.Error("expected the same connector instance")
	}
	if built != 1 {
		t.Errorf("expected 1 build, got %d", built)
	}
}

func TestUnhealthyConnectionIsRemoved(t *testing.T) {
	m := newTestManager(t, 5)

	bad := &fakeConnector{driver: "fake", pingErr: errors.New("down")}
	_, err := m.create(context.Background(), "fake:bad", func() (PoolConnector, error) {
		return bad, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := m.checkExisting(context.Background(), "fake:bad"); ok {
		t.Fatal("expected unhealthy connection to be evicted")
	}
	if !bad.isClosed() {
		t.Error("expected evicted connection to be closed")
	}
	if m.GetStats().TotalConnections != 0 {
		t.Error("expected no remaining connections")
	}
}

func TestCreateError(t *testing.T) {
	m := newTestManager(t, 5)

	boom := errors.New("boom")
	_, err := m.create(context.Background(), "fake:err", func() (PoolConnector, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if m.GetStats().TotalConnections != 0 {
		t.Error("failed creation should not be stored")
	}
}

func TestGetStats(t *testing.T) {
	m := newTestManager(t, 7)

	for _, key := range []string{"postgres:a", "postgres:b", "mysql:c"} {
		if _, err := m.create(context.Background(), key, func() (PoolConnector, error) {
			return &fakeConnector{driver: "fake"}, nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stats := m.GetStats()
	if stats.TotalConnections != 3 {
		t.Errorf("expected 3 connections, got %d", stats.TotalConnections)
	}
	if stats.TTLMinutes != 7 {
		t.Errorf("expected TTL 7, got %d", stats.TTLMinutes)
	}
	if stats.ConnectionsByDriver["postgres"] != 2 || stats.ConnectionsByDriver["mysql"] != 1 {
		t.Errorf("unexpected driver counts: %v", stats.ConnectionsByDriver)
	}
}

func TestPerformCleanupRemovesExpired(t *testing.T) {
	m := newTestManager(t, 5)

	conn := &fakeConnector{driver: "fake"}
	if _, err := m.create(context.Background(), "fake:old", func() (PoolConnector, error) {
		return conn, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.mu.Lock()
	m.connections["fake:old"].lastUsed = time.Now().Add(-10 * time.Minute)
	m.mu.Unlock()

	m.performCleanup()

	if m.GetStats().TotalConnections != 0 {
		t.Error("expected expired connection to be removed")
	}
	if !conn.isClosed() {
		t.Error("expected expired connection to be closed")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	m := NewConnectionManager(ConnectionManagerConfig{}, zap.NewNop())

	conn := &fakeConnector{driver: "fake"}
	if _, err := m.create(context.Background(), "fake:x", func() (PoolConnector, error) {
		return conn, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !conn.isClosed() {
		t.Error("expected connection closed on manager close")
	}
}

func TestDefaultsApplied(t *testing.T) {
	m := newTestManager(t, 0)

	if m.ttl != time.Duration(DefaultConnectionTTLMinutes)*time.Minute {
		t.Errorf("expected default TTL, got %v", m.ttl)
	}
	if m.poolMaxConns != DefaultPoolMaxConns || m.poolMinConns != DefaultPoolMinConns {
		t.Error("expected default pool bounds")
	}
}
