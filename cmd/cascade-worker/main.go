package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brightsmile/dental-platform/cmd/mainconfig"
	"github.com/brightsmile/dental-platform/internal/app/bootstrap"
	"github.com/brightsmile/dental-platform/internal/cascade"
	"github.com/brightsmile/dental-platform/internal/config"
	"github.com/brightsmile/dental-platform/internal/notify"
	"github.com/brightsmile/dental-platform/internal/observability/metrics"
	"github.com/brightsmile/dental-platform/internal/records"
	"github.com/brightsmile/dental-platform/internal/worker/cascadeworker"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).WithComponent("cascade-worker")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" || cfg.CascadeQueueURL == "" {
		logger.Error("cascade worker requires DATABASE_URL and CASCADE_QUEUE_URL")
		os.Exit(1)
	}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	queue := cascade.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CascadeQueueURL)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	notifier := notify.NewPublisher(redisClient, logger)

	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)

	propagator := cascade.NewPropagator(
		records.NewToothRepository(pool),
		records.NewAppointmentRepository(pool),
		records.NewTreatmentRepository(pool),
		notifier,
		engineMetrics,
		logger,
	)

	consumer := cascadeworker.NewConsumer(queue, propagator, logger,
		cascadeworker.WithWorkerCount(cfg.WorkerCount),
		cascadeworker.WithReceiveBatchSize(cfg.ReceiveBatchSize),
	)
	consumer.Start(ctx)
	logger.Info("cascade worker started", "workers", cfg.WorkerCount)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()

	done := make(chan struct{})
	go func() {
		consumer.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("cascade worker stopped")
	case <-time.After(30 * time.Second):
		logger.Error("cascade worker shutdown timed out")
	}
}
