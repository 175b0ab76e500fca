package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a versioned domain event that can be enveloped for transport.
type Event interface {
	EventType() string
}

// Envelope carries transport metadata alongside the serialized payload.
type Envelope struct {
	EventID         uuid.UUID       `json:"event_id"`
	EventType       string          `json:"event_type"`
	Aggregate       string          `json:"aggregate"`
	TimestampMicros int64           `json:"timestamp"`
	CorrelationID   string          `json:"correlation_id,omitempty"`
	Payload         json.RawMessage `json:"payload"`
}

var (
	errMissingAggregate = errors.New("events: aggregate is required")
	errNilEvent         = errors.New("events: event required")

	nowFunc = time.Now
)

// NewEnvelope wraps evt for transport. aggregate identifies the entity the
// event belongs to (e.g. the appointment id).
func NewEnvelope(aggregate, correlationID string, evt Event) (Envelope, error) {
	if strings.TrimSpace(aggregate) == "" {
		return Envelope{}, errMissingAggregate
	}
	if evt == nil {
		return Envelope{}, errNilEvent
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal payload: %w", err)
	}
	return Envelope{
		EventID:         uuid.New(),
		EventType:       evt.EventType(),
		Aggregate:       strings.TrimSpace(aggregate),
		TimestampMicros: nowFunc().UTC().UnixMicro(),
		CorrelationID:   strings.TrimSpace(correlationID),
		Payload:         payload,
	}, nil
}

// Encode serializes the envelope for the queue transport.
func (e Envelope) Encode() (string, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("events: marshal envelope: %w", err)
	}
	return string(body), nil
}

// DecodeEnvelope parses a transport message back into an envelope.
func DecodeEnvelope(body string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return Envelope{}, fmt.Errorf("events: unmarshal envelope: %w", err)
	}
	if env.EventType == "" {
		return Envelope{}, errors.New("events: envelope missing event type")
	}
	return env, nil
}

// DecodeAppointmentStatusChanged extracts the cascade trigger payload; it
// rejects envelopes of any other type.
func DecodeAppointmentStatusChanged(env Envelope) (AppointmentStatusChangedV1, error) {
	var evt AppointmentStatusChangedV1
	if env.EventType != evt.EventType() {
		return evt, fmt.Errorf("events: unexpected event type %q", env.EventType)
	}
	if err := json.Unmarshal(env.Payload, &evt); err != nil {
		return evt, fmt.Errorf("events: unmarshal appointment status payload: %w", err)
	}
	return evt, nil
}
