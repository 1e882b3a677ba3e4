package datasource

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// AdapterFactory builds adapters for connection descriptors, resolving
// the driver from the descriptor's URL scheme.
type AdapterFactory struct {
	connMgr *ConnectionManager
	logger  *zap.Logger
}

// NewAdapterFactory creates a factory backed by the connection manager.
func NewAdapterFactory(connMgr *ConnectionManager, logger *zap.Logger) *AdapterFactory {
	return &AdapterFactory{connMgr: connMgr, logger: logger}
}

// DriverFor resolves the registered driver for a descriptor.
func (f *AdapterFactory) DriverFor(descriptor string) (string, error) {
	return DriverForDescriptor(descriptor)
}

// NewSchemaInspector builds a schema inspector for the descriptor.
func (f *AdapterFactory) NewSchemaInspector(ctx context.Context, descriptor string) (SchemaInspector, error) {
	reg, err := f.registration(descriptor)
	if err != nil {
		return nil, err
	}
	return reg.InspectorFactory(ctx, descriptor, f.connMgr, f.logger)
}

// NewMetricsExecutor builds a metrics executor for the descriptor.
func (f *AdapterFactory) NewMetricsExecutor(ctx context.Context, descriptor string) (MetricsExecutor, error) {
	reg, err := f.registration(descriptor)
	if err != nil {
		return nil, err
	}
	return reg.MetricsFactory(ctx, descriptor, f.connMgr, f.logger)
}

// NewConnectionTester builds a connection tester for the descriptor.
func (f *AdapterFactory) NewConnectionTester(ctx context.Context, descriptor string) (ConnectionTester, error) {
	reg, err := f.registration(descriptor)
	if err != nil {
		return nil, err
	}
	return reg.TesterFactory(ctx, descriptor, f.connMgr, f.logger)
}

// ListDrivers returns the registered driver names, sorted.
func (f *AdapterFactory) ListDrivers() []string {
	infos := RegisteredAdapters()
	drivers := make([]string, 0, len(infos))
	for _, info := range infos {
		drivers = append(drivers, info.Driver)
	}
	sort.Strings(drivers)
	return drivers
}

func (f *AdapterFactory) registration(descriptor string) (Registration, error) {
	driver, err := DriverForDescriptor(descriptor)
	if err != nil {
		return Registration{}, err
	}
	reg, ok := GetRegistration(driver)
	if !ok {
		return Registration{}, fmt.Errorf("driver %q is not registered", driver)
	}
	return reg, nil
}
