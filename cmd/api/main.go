package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brightsmile/dental-platform/cmd/mainconfig"
	"github.com/brightsmile/dental-platform/internal/api/router"
	"github.com/brightsmile/dental-platform/internal/app/bootstrap"
	"github.com/brightsmile/dental-platform/internal/audit"
	"github.com/brightsmile/dental-platform/internal/cascade"
	appconfig "github.com/brightsmile/dental-platform/internal/config"
	"github.com/brightsmile/dental-platform/internal/http/handlers"
	"github.com/brightsmile/dental-platform/internal/observability/metrics"
	"github.com/brightsmile/dental-platform/internal/records"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

func main() {
	// .env is only present in local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting dental-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if pool == nil {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	defer pool.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	sqsClient := sqs.NewFromConfig(awsCfg)
	cascadeQueue := cascade.NewSQSQueue(sqsClient, cfg.CascadeQueueURL)
	publisher := cascade.NewTriggerPublisher(cascadeQueue, logger)

	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)

	toothRepo := records.NewToothRepository(pool)
	sqlDB := bootstrap.BuildSQLDB(pool)
	defer func() { _ = sqlDB.Close() }()
	correctionStore := audit.NewCorrectionStore(sqlDB)
	auditor := audit.NewAuditor(toothRepo, correctionStore, engineMetrics, logger.WithComponent("audit")).
		WithConcurrency(cfg.AuditConcurrency)

	routerCfg := &router.Config{
		Logger:             logger,
		AppointmentEvents:  handlers.NewAppointmentEventsHandler(publisher, logger),
		AdminAudit:         handlers.NewAdminAuditHandler(auditor, correctionStore, logger),
		PatientTeeth:       handlers.NewPatientTeethHandler(toothRepo, logger),
		MetricsHandler:     promhttp.Handler(),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
		WebhookRatePerSec:  cfg.WebhookRatePerSec,
		WebhookBurst:       cfg.WebhookBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
