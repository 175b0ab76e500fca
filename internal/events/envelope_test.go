package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	evt := AppointmentStatusChangedV1{
		EventID:       uuid.NewString(),
		AppointmentID: uuid.NewString(),
		PatientID:     uuid.NewString(),
		NewStatus:     "completed",
		OccurredAt:    time.Now().UTC().Truncate(time.Second),
	}

	env, err := NewEnvelope(evt.AppointmentID, "corr-1", evt)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	if env.EventType != "appointment.status_changed.v1" {
		t.Errorf("event type = %q", env.EventType)
	}
	if env.EventID == uuid.Nil {
		t.Error("expected generated event id")
	}

	body, err := env.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := DecodeEnvelope(body)
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	got, err := DecodeAppointmentStatusChanged(decoded)
	if err != nil {
		t.Fatalf("DecodeAppointmentStatusChanged failed: %v", err)
	}
	if got != evt {
		t.Errorf("round trip mismatch: got %+v want %+v", got, evt)
	}
}

func TestNewEnvelopeValidation(t *testing.T) {
	if _, err := NewEnvelope("", "", AppointmentStatusChangedV1{}); err == nil {
		t.Error("expected error for missing aggregate")
	}
	if _, err := NewEnvelope("appt-1", "", nil); err == nil {
		t.Error("expected error for nil event")
	}
}

func TestDecodeAppointmentStatusChangedRejectsOtherTypes(t *testing.T) {
	env, err := NewEnvelope("patient-1", "", ToothStatusUpdatedV1{PatientID: "p", ToothNumber: 46})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	if _, err := DecodeAppointmentStatusChanged(env); err == nil {
		t.Error("expected type mismatch error")
	}
}

func TestDecodeEnvelopeGarbage(t *testing.T) {
	if _, err := DecodeEnvelope("{not json"); err == nil {
		t.Error("expected error for malformed body")
	}
	if _, err := DecodeEnvelope(`{"payload":{}}`); err == nil {
		t.Error("expected error for missing event type")
	}
}
