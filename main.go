package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource"
	"github.com/tablediff-io/tablediff-engine/pkg/config"
	"github.com/tablediff-io/tablediff-engine/pkg/diff"
	"github.com/tablediff-io/tablediff-engine/pkg/handlers"
	"github.com/tablediff-io/tablediff-engine/pkg/middleware"
	"github.com/tablediff-io/tablediff-engine/pkg/services"

	// Adapters register themselves with the datasource registry.
	_ "github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource/mssql"
	_ "github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource/mysql"
	_ "github.com/tablediff-io/tablediff-engine/pkg/adapters/datasource/postgres"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("addr", cfg.ListenAddr()),
		zap.Int("connectionTTLMinutes", cfg.Datasource.ConnectionTTLMinutes),
		zap.Int("percentPrecision", cfg.Diff.PercentPrecision),
	)

	connMgr := datasource.NewConnectionManager(datasource.ConnectionManagerConfig{
		TTLMinutes:   cfg.Datasource.ConnectionTTLMinutes,
		PoolMaxConns: cfg.Datasource.PoolMaxConns,
		PoolMinConns: cfg.Datasource.PoolMinConns,
	}, logger)
	defer func() { _ = connMgr.Close() }()

	factory := datasource.NewAdapterFactory(connMgr, logger)
	service := services.NewComparisonService(
		factory,
		diff.NewDatabaseTypeMapper(),
		diff.DefaultMetricRegistry(),
		cfg.Diff.PercentPrecision,
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewDiffHandler(service, logger).RegisterRoutes(mux)
	handlers.NewHealthHandler(cfg, connMgr, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting tablediff-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version),
			zap.Strings("drivers", factory.ListDrivers()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
