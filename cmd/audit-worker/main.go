package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brightsmile/dental-platform/internal/app/bootstrap"
	"github.com/brightsmile/dental-platform/internal/audit"
	"github.com/brightsmile/dental-platform/internal/config"
	"github.com/brightsmile/dental-platform/internal/observability/metrics"
	"github.com/brightsmile/dental-platform/internal/records"
	"github.com/brightsmile/dental-platform/internal/worker/auditworker"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).WithComponent("audit-worker")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" {
		logger.Error("audit worker requires DATABASE_URL")
		os.Exit(1)
	}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	correctionDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open correction log connection", "error", err)
		os.Exit(1)
	}
	defer func() { _ = correctionDB.Close() }()

	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)
	auditor := audit.NewAuditor(
		records.NewToothRepository(pool),
		audit.NewCorrectionStore(correctionDB),
		engineMetrics,
		logger,
	).WithConcurrency(cfg.AuditConcurrency)

	scheduler := auditworker.NewScheduler(auditor, logger).
		WithInterval(cfg.AuditSweepInterval)

	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()
	logger.Info("audit worker started", "interval", cfg.AuditSweepInterval.String())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()
	<-done
	logger.Info("audit worker stopped")
}
