package mssql

import (
	"context"

	// Registers the "sqlserver" driver with database/sql.
	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.Info{
			Driver:      "sqlserver",
			DisplayName: "Microsoft SQL Server",
			Schemes:     []string{"sqlserver"},
		},
		TesterFactory: func(ctx context.Context, descriptor string, connMgr *datasource.ConnectionManager, logger *zap.Logger) (datasource.ConnectionTester, error) {
			return NewAdapter(ctx, descriptor, connMgr, logger)
		},
		InspectorFactory: func(ctx context.Context, descriptor string, connMgr *datasource.ConnectionManager, logger *zap.Logger) (datasource.SchemaInspector, error) {
			return NewAdapter(ctx, descriptor, connMgr, logger)
		},
		MetricsFactory: func(ctx context.Context, descriptor string, connMgr *datasource.ConnectionManager, logger *zap.Logger) (datasource.MetricsExecutor, error) {
			return NewAdapter(ctx, descriptor, connMgr, logger)
		},
	})
}
