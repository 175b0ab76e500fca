// Package notify publishes tooth-update notifications to the real-time
// channel the chart UI subscribes to.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/brightsmile/dental-platform/internal/events"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

// ChannelFor returns the pub/sub channel carrying one patient's tooth
// updates.
func ChannelFor(patientID string) string {
	return fmt.Sprintf("tooth-updates:%s", patientID)
}

// Publisher fans tooth updates out over redis pub/sub. Delivery is
// fire-and-forget, at-least-once, unordered across teeth; subscribers re-read
// the current record rather than trusting the payload.
type Publisher struct {
	redis  *redis.Client
	logger *logging.Logger
}

func NewPublisher(client *redis.Client, logger *logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{redis: client, logger: logger}
}

// PublishToothUpdate sends one update. A nil redis client turns publishing
// into a logged no-op so the engine keeps writing records when the channel is
// down.
func (p *Publisher) PublishToothUpdate(ctx context.Context, evt events.ToothStatusUpdatedV1) error {
	if p == nil || p.redis == nil {
		return nil
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("notify: marshal tooth update: %w", err)
	}
	if err := p.redis.Publish(ctx, ChannelFor(evt.PatientID), payload).Err(); err != nil {
		return fmt.Errorf("notify: publish tooth update: %w", err)
	}
	p.logger.Debug("tooth update published",
		"patient_id", evt.PatientID,
		"tooth_number", evt.ToothNumber,
		"status", evt.Status,
	)
	return nil
}
