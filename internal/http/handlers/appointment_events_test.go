package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-platform/internal/events"
)

type fakePublisher struct {
	published []events.AppointmentStatusChangedV1
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, evt events.AppointmentStatusChangedV1) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, evt)
	return nil
}

func TestHandleStatusChangeQueuesEvent(t *testing.T) {
	pub := &fakePublisher{}
	h := NewAppointmentEventsHandler(pub, nil)

	body := `{
		"appointment_id": "` + uuid.NewString() + `",
		"patient_id": "` + uuid.NewString() + `",
		"previous_status": "confirmed",
		"new_status": "completed"
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments/status", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleStatusChange(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.published))
	}
	evt := pub.published[0]
	if evt.NewStatus != "completed" || evt.EventID == "" || evt.OccurredAt.IsZero() {
		t.Errorf("incomplete event: %+v", evt)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp["event_id"] != evt.EventID {
		t.Errorf("response event_id %q != published %q", resp["event_id"], evt.EventID)
	}
}

func TestHandleStatusChangeRejectsUnknownStatus(t *testing.T) {
	pub := &fakePublisher{}
	h := NewAppointmentEventsHandler(pub, nil)

	body := `{
		"appointment_id": "` + uuid.NewString() + `",
		"patient_id": "` + uuid.NewString() + `",
		"new_status": "rebooked"
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments/status", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleStatusChange(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if len(pub.published) != 0 {
		t.Error("invalid status must not be published")
	}
}

func TestHandleStatusChangeRejectsBadIDs(t *testing.T) {
	h := NewAppointmentEventsHandler(&fakePublisher{}, nil)

	body := `{"appointment_id": "apt-1", "patient_id": "` + uuid.NewString() + `", "new_status": "scheduled"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments/status", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleStatusChange(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleStatusChangeQueueDown(t *testing.T) {
	pub := &fakePublisher{err: errors.New("sqs unavailable")}
	h := NewAppointmentEventsHandler(pub, nil)

	body := `{
		"appointment_id": "` + uuid.NewString() + `",
		"patient_id": "` + uuid.NewString() + `",
		"new_status": "in_progress"
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments/status", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleStatusChange(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
