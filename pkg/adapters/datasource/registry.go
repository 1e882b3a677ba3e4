package datasource

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Info describes a registered adapter.
type Info struct {
	Driver      string   `json:"driver"`       // "postgres", "mysql", "sqlserver"
	DisplayName string   `json:"display_name"` // "PostgreSQL", "MySQL", "Microsoft SQL Server"
	Schemes     []string `json:"schemes"`      // descriptor URL schemes, e.g. "postgresql"
}

// Registration contains info + factories for creating adapters.
// Factory functions accept the connection manager so adapters share
// pooled connections keyed by descriptor.
type Registration struct {
	Info             Info
	TesterFactory    func(ctx context.Context, descriptor string, connMgr *ConnectionManager, logger *zap.Logger) (ConnectionTester, error)
	InspectorFactory func(ctx context.Context, descriptor string, connMgr *ConnectionManager, logger *zap.Logger) (SchemaInspector, error)
	MetricsFactory   func(ctx context.Context, descriptor string, connMgr *ConnectionManager, logger *zap.Logger) (MetricsExecutor, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Registration)
	bySchemes  = make(map[string]string) // scheme -> driver
)

// Register is called by each adapter's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Driver] = reg
	for _, scheme := range reg.Info.Schemes {
		bySchemes[scheme] = reg.Info.Driver
	}
}

// RegisteredAdapters returns info for all registered adapters.
func RegisteredAdapters() []Info {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Info, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	return result
}

// GetRegistration returns the registration for a driver.
func GetRegistration(driver string) (Registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := registry[driver]
	return reg, ok
}

// DriverForScheme maps a descriptor URL scheme to its registered driver.
func DriverForScheme(scheme string) (string, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	driver, ok := bySchemes[scheme]
	return driver, ok
}

// IsRegistered checks if a driver is available.
func IsRegistered(driver string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[driver]
	return ok
}
