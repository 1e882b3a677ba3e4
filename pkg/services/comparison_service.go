// Package services wires the diff core to the datasource adapters. The
// comparison service owns request orchestration: identifier screening,
// concurrent schema inspection and metric collection, then diffing.
package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource"
	"github.com/tablediff-io/tablediff-engine/pkg/apperrors"
	"github.com/tablediff-io/tablediff-engine/pkg/diff"
	"github.com/tablediff-io/tablediff-engine/pkg/sqlguard"
)

// TableTarget identifies one table on one connection.
type TableTarget struct {
	Descriptor string
	Table      string
}

// AdapterProvider builds adapters for connection descriptors. Satisfied
// by datasource.AdapterFactory.
type AdapterProvider interface {
	NewSchemaInspector(ctx context.Context, descriptor string) (datasource.SchemaInspector, error)
	NewMetricsExecutor(ctx context.Context, descriptor string) (datasource.MetricsExecutor, error)
	NewConnectionTester(ctx context.Context, descriptor string) (datasource.ConnectionTester, error)
	DriverFor(descriptor string) (string, error)
}

// ComparisonService compares tables across connections.
type ComparisonService interface {
	// CompareTables produces the full schema and metrics comparison of
	// two tables, which may live on different connections and vendors.
	CompareTables(ctx context.Context, t1, t2 TableTarget) (*diff.ComparisonResult, error)

	// InspectTable returns one table's normalized schema.
	InspectTable(ctx context.Context, target TableTarget) (*diff.SchemaInfo, error)

	// TestConnection verifies a descriptor can be connected to.
	TestConnection(ctx context.Context, descriptor string) error

	// MetricNames lists the metrics computed per numeric column.
	MetricNames() []string
}

type comparisonService struct {
	provider  AdapterProvider
	mapper    *diff.DatabaseTypeMapper
	registry  *diff.MetricRegistry
	precision int
	logger    *zap.Logger
}

// NewComparisonService creates the comparison service. precision is the
// number of decimal places in percent diff strings.
func NewComparisonService(provider AdapterProvider, mapper *diff.DatabaseTypeMapper, registry *diff.MetricRegistry, precision int, logger *zap.Logger) ComparisonService {
	return &comparisonService{
		provider:  provider,
		mapper:    mapper,
		registry:  registry,
		precision: precision,
		logger:    logger,
	}
}

func (s *comparisonService) CompareTables(ctx context.Context, t1, t2 TableTarget) (*diff.ComparisonResult, error) {
	if err := sqlguard.CheckIdentifier("table", t1.Table); err != nil {
		return nil, err
	}
	if err := sqlguard.CheckIdentifier("table", t2.Table); err != nil {
		return nil, err
	}

	var s1, s2 diff.SchemaInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		schema, err := s.inspect(gctx, t1)
		if err != nil {
			return err
		}
		s1 = *schema
		return nil
	})
	g.Go(func() error {
		schema, err := s.inspect(gctx, t2)
		if err != nil {
			return err
		}
		s2 = *schema
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	columns := diff.CompareColumns(s1, s2)
	numeric := diff.CommonNumericColumns(columns, s1, s2)

	s.logger.Debug("schemas compared",
		zap.String("table1", t1.Table),
		zap.String("table2", t2.Table),
		zap.Int("common", len(columns.Common)),
		zap.Int("numeric", len(numeric)),
	)

	var m1, m2 diff.MetricsResult
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.computeMetrics(gctx, t1, s1, numeric)
		if err != nil {
			return err
		}
		m1 = *m
		return nil
	})
	g.Go(func() error {
		m, err := s.computeMetrics(gctx, t2, s2, numeric)
		if err != nil {
			return err
		}
		m2 = *m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &diff.ComparisonResult{
		Columns:     columns,
		Table1:      m1,
		Table2:      m2,
		MetricsDiff: diff.DiffMetrics(m1, m2, s.precision),
	}, nil
}

func (s *comparisonService) InspectTable(ctx context.Context, target TableTarget) (*diff.SchemaInfo, error) {
	if err := sqlguard.CheckIdentifier("table", target.Table); err != nil {
		return nil, err
	}
	return s.inspect(ctx, target)
}

func (s *comparisonService) TestConnection(ctx context.Context, descriptor string) error {
	tester, err := s.provider.NewConnectionTester(ctx, descriptor)
	if err != nil {
		return asConnectionError(descriptor, err)
	}
	defer func() { _ = tester.Close() }()
	return tester.TestConnection(ctx)
}

func (s *comparisonService) MetricNames() []string {
	return s.registry.Names()
}

// asConnectionError keeps adapter errors as-is and tags everything else
// (unknown schemes, unregistered drivers) as a connection failure so the
// boundary reports it to the client.
func asConnectionError(descriptor string, err error) error {
	if apperrors.IsComparisonError(err) {
		return err
	}
	return apperrors.ConnectionFailed(descriptor, err)
}

// inspect reads and normalizes one table's schema. An empty catalog
// result means the table does not exist.
func (s *comparisonService) inspect(ctx context.Context, target TableTarget) (*diff.SchemaInfo, error) {
	inspector, err := s.provider.NewSchemaInspector(ctx, target.Descriptor)
	if err != nil {
		return nil, asConnectionError(target.Descriptor, err)
	}
	defer func() { _ = inspector.Close() }()

	cols, err := inspector.Columns(ctx, target.Table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, apperrors.TableNotFound(target.Table, target.Descriptor)
	}

	raw := make([]diff.RawColumn, 0, len(cols))
	for _, c := range cols {
		raw = append(raw, diff.RawColumn{Name: c.Name, Type: c.DataType})
	}
	schema := diff.BuildSchemaInfo(raw, s.mapper)
	return &schema, nil
}

// computeMetrics validates the columns against the schema, resolves the
// registry's aggregate templates for the target's driver and runs them.
func (s *comparisonService) computeMetrics(ctx context.Context, target TableTarget, schema diff.SchemaInfo, columns []string) (*diff.MetricsResult, error) {
	for _, col := range columns {
		if err := sqlguard.CheckIdentifier("column", col); err != nil {
			return nil, err
		}
		found := false
		for _, c := range schema.Columns {
			if c.Name == col {
				found = c.IsNumeric
				break
			}
		}
		if !found {
			return nil, apperrors.InvalidColumn(col, target.Table)
		}
	}

	driver, err := s.provider.DriverFor(target.Descriptor)
	if err != nil {
		return nil, apperrors.ConnectionFailed(target.Descriptor, err)
	}

	aggs := make([]datasource.AggregateSpec, 0, len(s.registry.Names()))
	for _, agg := range s.registry.Aggregations() {
		aggs = append(aggs, datasource.AggregateSpec{
			Metric:     agg.Name(),
			Expression: agg.Template(driver),
		})
	}

	executor, err := s.provider.NewMetricsExecutor(ctx, target.Descriptor)
	if err != nil {
		return nil, asConnectionError(target.Descriptor, err)
	}
	defer func() { _ = executor.Close() }()

	metrics, err := executor.TableMetrics(ctx, target.Table, columns, aggs)
	if err != nil {
		return nil, err
	}

	return &diff.MetricsResult{
		RowCount: metrics.RowCount,
		Metrics:  metrics.Values,
	}, nil
}
