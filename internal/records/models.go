// Package records provides persistence for the clinical entities the state
// synchronization engine reads and writes: tooth records, treatments,
// appointments and the appointment-tooth junction.
package records

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-platform/internal/dental"
)

// ToothRecord is one row of a tooth's append-only clinical history. The
// "current" record for a (patient, tooth) pair is the most recent row by
// UpdatedAt; history is never mutated in place.
type ToothRecord struct {
	ID                   uuid.UUID
	PatientID            uuid.UUID
	ToothNumber          int
	Status               dental.Status
	ColorCode            string
	PrimaryDiagnosis     string
	RecommendedTreatment string
	TreatmentProvided    string
	FollowUpRequired     bool
	SourceConsultationID *uuid.UUID
	UpdatedAt            time.Time
}

// Succeeds returns a copy of r carrying a new status and matching color,
// ready to be appended as the tooth's next history row.
func (r ToothRecord) Succeeds(status dental.Status, now time.Time) ToothRecord {
	next := r
	next.ID = uuid.New()
	next.Status = status
	next.ColorCode = dental.ColorOf(status)
	next.UpdatedAt = now
	return next
}

// TreatmentRecord is a planned or delivered treatment for a single tooth.
type TreatmentRecord struct {
	ID               uuid.UUID
	PatientID        uuid.UUID
	ConsultationID   *uuid.UUID
	ToothDiagnosisID *uuid.UUID
	ToothNumber      int
	TreatmentType    string
	Status           dental.TreatmentStatus
	// PlannedStatus is a legacy free-form field the scheduling UI reads.
	// It is kept in sync opportunistically, never audited.
	PlannedStatus string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AppointmentRecord is the booking system's view of a visit.
type AppointmentRecord struct {
	ID                uuid.UUID
	PatientID         uuid.UUID
	AppointmentType   string
	Status            dental.AppointmentStatus
	LinkedTreatmentID *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AppointmentToothLink joins an appointment to a tooth it touches. Links are
// created at booking time and immutable thereafter.
type AppointmentToothLink struct {
	AppointmentID    uuid.UUID
	ToothNumber      int
	ToothDiagnosisID *uuid.UUID
	DiagnosisNote    string
}
