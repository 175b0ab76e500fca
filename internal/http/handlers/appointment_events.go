// Package handlers contains the HTTP surface: the booking-system webhook that
// feeds the cascade queue and the admin endpoints for tooth charts and audit
// operations.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-platform/internal/dental"
	"github.com/brightsmile/dental-platform/internal/events"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

// EventPublisher enqueues an appointment status change for cascading.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.AppointmentStatusChangedV1) error
}

// AppointmentEventsHandler receives status-change webhooks from the booking
// system.
type AppointmentEventsHandler struct {
	publisher EventPublisher
	logger    *logging.Logger
}

func NewAppointmentEventsHandler(publisher EventPublisher, logger *logging.Logger) *AppointmentEventsHandler {
	if publisher == nil {
		panic("handlers: publisher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentEventsHandler{publisher: publisher, logger: logger}
}

// StatusChangeRequest is the webhook body posted by the booking system.
type StatusChangeRequest struct {
	AppointmentID  string     `json:"appointment_id"`
	PatientID      string     `json:"patient_id"`
	PreviousStatus string     `json:"previous_status,omitempty"`
	NewStatus      string     `json:"new_status"`
	OccurredAt     *time.Time `json:"occurred_at,omitempty"`
}

// HandleStatusChange accepts a status-change webhook and enqueues it.
// POST /webhooks/appointments/status
func (h *AppointmentEventsHandler) HandleStatusChange(w http.ResponseWriter, r *http.Request) {
	var req StatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(req.AppointmentID); err != nil {
		jsonError(w, "appointment_id must be a UUID", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(req.PatientID); err != nil {
		jsonError(w, "patient_id must be a UUID", http.StatusBadRequest)
		return
	}
	if !dental.ValidAppointmentStatus(dental.AppointmentStatus(req.NewStatus)) {
		jsonError(w, "unknown new_status", http.StatusUnprocessableEntity)
		return
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}
	evt := events.AppointmentStatusChangedV1{
		EventID:        uuid.NewString(),
		AppointmentID:  req.AppointmentID,
		PatientID:      req.PatientID,
		PreviousStatus: req.PreviousStatus,
		NewStatus:      req.NewStatus,
		OccurredAt:     occurredAt,
	}
	if err := h.publisher.Publish(r.Context(), evt); err != nil {
		h.logger.Error("failed to enqueue status change",
			"error", err,
			"appointment_id", req.AppointmentID,
		)
		jsonError(w, "failed to enqueue event", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"event_id": evt.EventID,
		"status":   "queued",
	})
}
