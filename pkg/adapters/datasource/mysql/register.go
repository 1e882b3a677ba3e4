package mysql

import (
	"context"

	"go.uber.org/zap"

	"github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Registration{
		Info: datasource.Info{
			Driver:      "mysql",
			DisplayName: "MySQL",
			Schemes:     []string{"mysql"},
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
