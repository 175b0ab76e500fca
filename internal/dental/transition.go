package dental

// AppointmentStatus is the lifecycle state reported by the booking system.
type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
	AppointmentNoShow     AppointmentStatus = "no_show"
)

// ValidAppointmentStatus reports whether s is one of the six lifecycle states.
func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentInProgress,
		AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// TreatmentStatus mirrors the owning appointment's lifecycle onto the
// treatment record.
type TreatmentStatus string

const (
	TreatmentPending    TreatmentStatus = "pending"
	TreatmentInProgress TreatmentStatus = "in_progress"
	TreatmentCompleted  TreatmentStatus = "completed"
	TreatmentCancelled  TreatmentStatus = "cancelled"
)

// MirrorTreatmentStatus maps an appointment lifecycle state onto the
// treatment status enum.
func MirrorTreatmentStatus(s AppointmentStatus) TreatmentStatus {
	switch s {
	case AppointmentInProgress:
		return TreatmentInProgress
	case AppointmentCompleted:
		return TreatmentCompleted
	case AppointmentCancelled, AppointmentNoShow:
		return TreatmentCancelled
	default:
		return TreatmentPending
	}
}

// NextStatus computes the tooth status that follows an appointment lifecycle
// change. treatmentType is the free-text treatment description ("" when no
// treatment is linked); prior is the tooth's status immediately before the
// change ("" when the tooth has no recorded history).
//
// The asymmetries are deliberate: in_progress flags the tooth unconditionally
// because active chairside work always warrants attention, while scheduled and
// confirmed keep a non-healthy prior status. A completed appointment with an
// unrecognized treatment type resolves to healthy.
func NextStatus(appointment AppointmentStatus, treatmentType string, prior Status) Status {
	switch appointment {
	case AppointmentScheduled, AppointmentConfirmed:
		if prior != "" && prior != StatusHealthy {
			return prior
		}
		if treatmentType != "" {
			if s := ClassifyInitial(treatmentType, ""); s != StatusHealthy {
				return s
			}
			// A scheduled non-trivial treatment must not read as
			// "nothing wrong".
			return StatusAttention
		}
		return StatusAttention

	case AppointmentInProgress:
		return StatusAttention

	case AppointmentCompleted:
		if treatmentType != "" {
			if s, ok := ClassifyFinal(treatmentType); ok {
				return s
			}
		}
		return StatusHealthy

	case AppointmentCancelled, AppointmentNoShow:
		if prior != "" {
			return prior
		}
		return StatusAttention
	}

	// Unknown appointment states are treated like cancellations: fall back
	// to the last known clinical state.
	if prior != "" {
		return prior
	}
	return StatusAttention
}
