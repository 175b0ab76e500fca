// Package events defines the versioned domain events the engine consumes and
// emits, plus the transport envelope they travel in.
package events

import "time"

// AppointmentStatusChangedV1 is published by the booking system whenever an
// appointment's lifecycle state changes. It is the trigger for the cascade.
type AppointmentStatusChangedV1 struct {
	EventID        string    `json:"event_id"`
	AppointmentID  string    `json:"appointment_id"`
	PatientID      string    `json:"patient_id"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (AppointmentStatusChangedV1) EventType() string { return "appointment.status_changed.v1" }

// ToothStatusUpdatedV1 is the notification payload published per updated
// tooth. Consumers must treat it as a hint to re-fetch the current record: a
// later write may already have superseded it.
type ToothStatusUpdatedV1 struct {
	PatientID   string    `json:"patient_id"`
	ToothNumber int       `json:"tooth_number"`
	Status      string    `json:"status"`
	ColorCode   string    `json:"color_code"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ToothStatusUpdatedV1) EventType() string { return "tooth.status_updated.v1" }
