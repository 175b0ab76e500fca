// Package cascadeworker consumes appointment status-change events from the
// queue and applies the tooth-status cascade for each one.
package cascadeworker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-platform/internal/cascade"
	"github.com/brightsmile/dental-platform/internal/events"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

// Applier runs one cascade for an appointment.
type Applier interface {
	Apply(ctx context.Context, appointmentID uuid.UUID) (*cascade.Result, error)
}

type config struct {
	workers          int
	receiveBatchSize int
	receiveWaitSecs  int
}

// Option customizes the consumer.
type Option func(*config)

func WithWorkerCount(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

func WithReceiveBatchSize(n int) Option {
	return func(c *config) {
		if n > 0 && n <= 10 {
			c.receiveBatchSize = n
		}
	}
}

// Consumer long-polls the cascade queue and hands each event to the
// propagator. Redelivery of an already-applied event is harmless: cascades
// are idempotent, so at-least-once delivery is enough.
type Consumer struct {
	queue      cascade.Queue
	propagator Applier
	logger     *logging.Logger
	cfg        config
	wg         sync.WaitGroup
}

func NewConsumer(queue cascade.Queue, propagator Applier, logger *logging.Logger, opts ...Option) *Consumer {
	if queue == nil {
		panic("cascadeworker: queue cannot be nil")
	}
	if propagator == nil {
		panic("cascadeworker: propagator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := config{workers: 2, receiveBatchSize: 10, receiveWaitSecs: 20}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Consumer{queue: queue, propagator: propagator, logger: logger, cfg: cfg}
}

// Start launches worker goroutines until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	for i := 0; i < c.cfg.workers; i++ {
		c.wg.Add(1)
		go c.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) run(ctx context.Context, workerID int) {
	defer c.wg.Done()
	c.logger.Debug("cascade worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("cascade worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := c.queue.Receive(ctx, c.cfg.receiveBatchSize, c.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Error("failed to receive cascade events", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			c.handleMessage(ctx, msg)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg cascade.Message) {
	env, err := events.DecodeEnvelope(msg.Body)
	if err != nil {
		c.logger.Error("failed to decode cascade event", "error", err, "msg_id", msg.ID)
		c.deleteMessage(context.Background(), msg.ReceiptHandle)
		return
	}
	evt, err := events.DecodeAppointmentStatusChanged(env)
	if err != nil {
		c.logger.Error("unexpected event on cascade queue",
			"error", err,
			"event_type", env.EventType,
			"msg_id", msg.ID,
		)
		c.deleteMessage(context.Background(), msg.ReceiptHandle)
		return
	}
	appointmentID, err := uuid.Parse(evt.AppointmentID)
	if err != nil {
		c.logger.Error("cascade event has malformed appointment id",
			"error", err,
			"appointment_id", evt.AppointmentID,
		)
		c.deleteMessage(context.Background(), msg.ReceiptHandle)
		return
	}

	result, err := c.propagator.Apply(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, cascade.ErrAppointmentNotFound) || errors.Is(err, cascade.ErrInvalidReference) {
			// Not retryable: the referenced data will not appear on redelivery.
			c.logger.Warn("dropping unprocessable cascade event",
				"error", err,
				"appointment_id", appointmentID,
				"event_id", env.EventID,
			)
			c.deleteMessage(context.Background(), msg.ReceiptHandle)
			return
		}
		// Transient failure: leave the message for redelivery.
		c.logger.Error("cascade apply failed", "error", err, "appointment_id", appointmentID)
		return
	}

	if failed := result.Failed(); len(failed) > 0 {
		// Per-tooth failures do not hold the message: the cascade already
		// applied everything it could and the consistency sweep repairs the
		// rest. Reprocessing would redo the same work.
		c.logger.Warn("cascade applied with tooth failures",
			"appointment_id", appointmentID,
			"failed_teeth", len(failed),
			"total_teeth", len(result.Teeth),
		)
	} else {
		c.logger.Info("cascade applied",
			"appointment_id", appointmentID,
			"appointment_status", result.AppointmentStatus,
			"teeth", len(result.Teeth),
		)
	}
	c.deleteMessage(context.Background(), msg.ReceiptHandle)
}

func (c *Consumer) deleteMessage(ctx context.Context, receiptHandle string) {
	if err := c.queue.Delete(ctx, receiptHandle); err != nil {
		c.logger.Error("failed to delete cascade message", "error", err)
	}
}
