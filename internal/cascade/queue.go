package cascade

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/brightsmile/dental-platform/internal/events"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

// Queue is the transport carrying appointment status-change events from the
// booking system to the cascade worker.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Message is one queued transport message.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// SQSQueue implements Queue backed by AWS/LocalStack SQS.
type SQSQueue struct {
	client   *sqs.Client
	queueURL string
}

func NewSQSQueue(client *sqs.Client, queueURL string) *SQSQueue {
	if client == nil {
		panic("cascade: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("cascade: SQS queueURL cannot be empty")
	}
	return &SQSQueue{client: client, queueURL: queueURL}
}

func (q *SQSQueue) Send(ctx context.Context, body string) error {
	_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("cascade: send SQS message: %w", err)
	}
	return nil
}

func (q *SQSQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error) {
	output, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     int32(waitSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("cascade: receive SQS messages: %w", err)
	}
	messages := make([]Message, 0, len(output.Messages))
	for _, msg := range output.Messages {
		messages = append(messages, Message{
			ID:            aws.ToString(msg.MessageId),
			Body:          aws.ToString(msg.Body),
			ReceiptHandle: aws.ToString(msg.ReceiptHandle),
		})
	}
	return messages, nil
}

func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	if receiptHandle == "" {
		return nil
	}
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("cascade: delete SQS message: %w", err)
	}
	return nil
}

// TriggerPublisher enqueues status-change events for asynchronous cascading.
type TriggerPublisher struct {
	queue  Queue
	logger *logging.Logger
}

func NewTriggerPublisher(queue Queue, logger *logging.Logger) *TriggerPublisher {
	if queue == nil {
		panic("cascade: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TriggerPublisher{queue: queue, logger: logger}
}

// Publish envelopes the event and places it on the queue.
func (p *TriggerPublisher) Publish(ctx context.Context, evt events.AppointmentStatusChangedV1) error {
	env, err := events.NewEnvelope(evt.AppointmentID, evt.EventID, evt)
	if err != nil {
		return err
	}
	body, err := env.Encode()
	if err != nil {
		return err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return err
	}
	p.logger.Info("appointment status change enqueued",
		"appointment_id", evt.AppointmentID,
		"new_status", evt.NewStatus,
		"event_id", env.EventID,
	)
	return nil
}
