// Package datasource defines the adapter contracts for reading schema
// metadata and aggregate metrics from customer databases, plus the
// connection manager that pools those connections. Concrete adapters
// live in subpackages and register themselves via init().
package datasource

import "context"

// ColumnMetadata is one column row from a database catalog.
type ColumnMetadata struct {
	Name            string
	DataType        string
	OrdinalPosition int
}

// ConnectionTester verifies that a descriptor can be connected to.
type ConnectionTester interface {
	// TestConnection verifies connectivity with a lightweight round trip.
	TestConnection(ctx context.Context) error

	// Close releases adapter resources. Pooled connections stay in the
	// manager for reuse.
	Close() error
}

// SchemaInspector reads column metadata for tables on one connection.
type SchemaInspector interface {
	// Columns returns the table's columns in ordinal order. An empty
	// result means the table does not exist on this connection.
	Columns(ctx context.Context, table string) ([]ColumnMetadata, error)

	// Close releases adapter resources. Pooled connections stay in the
	// manager for reuse.
	Close() error
}

// AggregateSpec is one aggregate to compute per column. Expression is
// the driver-resolved SQL template with a single %s placeholder for the
// quoted column name.
type AggregateSpec struct {
	Metric     string
	Expression string
}

// TableMetrics holds the row count and aggregate values of one table,
// keyed metric name then column name. Columns whose aggregate came back
// NULL are absent.
type TableMetrics struct {
	RowCount int64
	Values   map[string]map[string]float64
}

// MetricsExecutor computes row counts and per-column aggregates.
type MetricsExecutor interface {
	// TableMetrics runs COUNT(*) plus the given aggregates over columns.
	TableMetrics(ctx context.Context, table string, columns []string, aggs []AggregateSpec) (*TableMetrics, error)

	// Close releases adapter resources. Pooled connections stay in the
	// manager for reuse.
	Close() error
}
