// Package cascade propagates appointment lifecycle changes onto treatment and
// tooth records.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/brightsmile/dental-platform/internal/dental"
	"github.com/brightsmile/dental-platform/internal/events"
	"github.com/brightsmile/dental-platform/internal/observability/metrics"
	"github.com/brightsmile/dental-platform/internal/records"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

var tracer = otel.Tracer("dental/cascade")

var (
	// ErrAppointmentNotFound is returned when the cascade trigger references
	// an appointment that does not exist.
	ErrAppointmentNotFound = errors.New("cascade: appointment not found")
	// ErrInvalidReference marks referentially inconsistent input: a link
	// outside the FDI range or a dangling treatment reference. The engine
	// rejects these rather than guessing.
	ErrInvalidReference = errors.New("cascade: invalid reference")
)

// ToothStore is the tooth-history surface the propagator needs.
type ToothStore interface {
	GetCurrent(ctx context.Context, patientID uuid.UUID, toothNumber int) (*records.ToothRecord, error)
	Append(ctx context.Context, rec records.ToothRecord) error
}

// AppointmentStore loads the appointment and its tooth links.
type AppointmentStore interface {
	Get(ctx context.Context, id uuid.UUID) (*records.AppointmentRecord, error)
	GetLinkedTeeth(ctx context.Context, appointmentID uuid.UUID) ([]records.AppointmentToothLink, error)
}

// TreatmentStore loads and mirrors the linked treatment.
type TreatmentStore interface {
	Get(ctx context.Context, id uuid.UUID) (*records.TreatmentRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status dental.TreatmentStatus) error
}

// Notifier publishes per-tooth change notifications.
type Notifier interface {
	PublishToothUpdate(ctx context.Context, evt events.ToothStatusUpdatedV1) error
}

// ToothOutcome reports what happened to one linked tooth.
type ToothOutcome struct {
	ToothNumber int
	Status      dental.Status
	Changed     bool
	Err         error
}

// Result is the per-appointment cascade report. Tooth writes are append-only,
// so a partially failed cascade leaves no invalid state; callers decide
// whether to retry based on Failed().
type Result struct {
	AppointmentID     uuid.UUID
	AppointmentStatus dental.AppointmentStatus
	TreatmentMirrored bool
	TreatmentErr      error
	Teeth             []ToothOutcome
}

// Failed returns the outcomes for teeth whose write failed or whose link was
// rejected.
func (r *Result) Failed() []ToothOutcome {
	var out []ToothOutcome
	for _, o := range r.Teeth {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Propagator orchestrates the cascade. It is safe to invoke repeatedly for
// the same appointment: recomputing an already-propagated status appends
// nothing.
type Propagator struct {
	teeth        ToothStore
	appointments AppointmentStore
	treatments   TreatmentStore
	notifier     Notifier
	metrics      *metrics.EngineMetrics
	logger       *logging.Logger
	now          func() time.Time
}

func NewPropagator(teeth ToothStore, appointments AppointmentStore, treatments TreatmentStore,
	notifier Notifier, m *metrics.EngineMetrics, logger *logging.Logger) *Propagator {
	if teeth == nil || appointments == nil || treatments == nil {
		panic("cascade: stores required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Propagator{
		teeth:        teeth,
		appointments: appointments,
		treatments:   treatments,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the timestamp source (tests).
func (p *Propagator) WithClock(now func() time.Time) *Propagator {
	if now != nil {
		p.now = now
	}
	return p
}

// Apply runs the cascade for one appointment whose status has changed. It
// returns an error only when the trigger itself is unusable; per-tooth
// failures are tolerated, logged, and reported in the Result so sibling teeth
// still get written.
func (p *Propagator) Apply(ctx context.Context, appointmentID uuid.UUID) (*Result, error) {
	ctx, span := tracer.Start(ctx, "cascade.apply")
	defer span.End()
	span.SetAttributes(attribute.String("appointment_id", appointmentID.String()))

	appt, err := p.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("cascade: load appointment %s: %w", appointmentID, err)
	}
	if appt == nil {
		return nil, fmt.Errorf("%w: %s", ErrAppointmentNotFound, appointmentID)
	}
	if !dental.ValidAppointmentStatus(appt.Status) {
		return nil, fmt.Errorf("%w: appointment %s has status %q", ErrInvalidReference, appointmentID, appt.Status)
	}

	links, err := p.appointments.GetLinkedTeeth(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("cascade: load linked teeth for %s: %w", appointmentID, err)
	}

	result := &Result{AppointmentID: appointmentID, AppointmentStatus: appt.Status}
	treatmentType := p.mirrorTreatment(ctx, appt, result)

	for _, link := range links {
		outcome := p.applyTooth(ctx, appt, link, treatmentType)
		result.Teeth = append(result.Teeth, outcome)
		if outcome.Err != nil {
			p.metrics.ObserveToothFailure()
			p.logger.Error("cascade tooth update failed",
				"error", outcome.Err,
				"appointment_id", appointmentID,
				"patient_id", appt.PatientID,
				"tooth_number", link.ToothNumber,
			)
		}
	}

	p.metrics.ObserveCascade(string(appt.Status), outcomeLabel(result))
	p.logger.Info("cascade applied",
		"appointment_id", appointmentID,
		"appointment_status", appt.Status,
		"teeth", len(result.Teeth),
		"failed", len(result.Failed()),
	)
	return result, nil
}

// mirrorTreatment updates the linked treatment's status and returns the
// treatment type used for tooth transitions. A broken treatment reference is
// recorded on the result but never blocks the per-tooth loop.
func (p *Propagator) mirrorTreatment(ctx context.Context, appt *records.AppointmentRecord, result *Result) string {
	if appt.LinkedTreatmentID == nil {
		return ""
	}
	treatment, err := p.treatments.Get(ctx, *appt.LinkedTreatmentID)
	if err != nil {
		result.TreatmentErr = fmt.Errorf("cascade: load treatment %s: %w", *appt.LinkedTreatmentID, err)
	} else if treatment == nil {
		result.TreatmentErr = fmt.Errorf("%w: appointment %s links missing treatment %s",
			ErrInvalidReference, appt.ID, *appt.LinkedTreatmentID)
	} else {
		mirrored := dental.MirrorTreatmentStatus(appt.Status)
		if err := p.treatments.UpdateStatus(ctx, treatment.ID, mirrored); err != nil {
			result.TreatmentErr = err
		} else {
			result.TreatmentMirrored = true
		}
		return treatment.TreatmentType
	}
	p.logger.Error("cascade treatment mirror failed",
		"error", result.TreatmentErr,
		"appointment_id", appt.ID,
	)
	return ""
}

func (p *Propagator) applyTooth(ctx context.Context, appt *records.AppointmentRecord,
	link records.AppointmentToothLink, treatmentType string) ToothOutcome {

	if !dental.ValidFDI(link.ToothNumber) {
		return ToothOutcome{
			ToothNumber: link.ToothNumber,
			Err: fmt.Errorf("%w: appointment %s links tooth number %d outside FDI range",
				ErrInvalidReference, appt.ID, link.ToothNumber),
		}
	}

	current, err := p.teeth.GetCurrent(ctx, appt.PatientID, link.ToothNumber)
	if err != nil {
		return ToothOutcome{ToothNumber: link.ToothNumber, Err: err}
	}

	var prior dental.Status
	if current != nil {
		prior = current.Status
	}
	text := treatmentType
	if text == "" {
		text = link.DiagnosisNote
	}
	next := dental.NextStatus(appt.Status, text, prior)

	if current != nil && next == current.Status {
		return ToothOutcome{ToothNumber: link.ToothNumber, Status: next}
	}

	var rec records.ToothRecord
	if current != nil {
		rec = current.Succeeds(next, p.now().UTC())
	} else {
		// First record in this tooth's lineage: seed the clinical text
		// from the booking's diagnosis note.
		rec = records.ToothRecord{
			ID:               uuid.New(),
			PatientID:        appt.PatientID,
			ToothNumber:      link.ToothNumber,
			Status:           next,
			ColorCode:        dental.ColorOf(next),
			PrimaryDiagnosis: link.DiagnosisNote,
			UpdatedAt:        p.now().UTC(),
		}
	}
	if err := p.teeth.Append(ctx, rec); err != nil {
		return ToothOutcome{ToothNumber: link.ToothNumber, Err: err}
	}
	p.metrics.ObserveToothUpdated()
	p.publish(ctx, rec)
	return ToothOutcome{ToothNumber: link.ToothNumber, Status: next, Changed: true}
}

// publish emits the change notification. Delivery is best effort; a failed
// publish never fails the tooth write.
func (p *Propagator) publish(ctx context.Context, rec records.ToothRecord) {
	if p.notifier == nil {
		return
	}
	evt := events.ToothStatusUpdatedV1{
		PatientID:   rec.PatientID.String(),
		ToothNumber: rec.ToothNumber,
		Status:      string(rec.Status),
		ColorCode:   rec.ColorCode,
		UpdatedAt:   rec.UpdatedAt,
	}
	if err := p.notifier.PublishToothUpdate(ctx, evt); err != nil {
		p.metrics.ObserveNotification("failed")
		p.logger.Warn("tooth update notification failed",
			"error", err,
			"patient_id", rec.PatientID,
			"tooth_number", rec.ToothNumber,
		)
		return
	}
	p.metrics.ObserveNotification("published")
}

func outcomeLabel(r *Result) string {
	failed := len(r.Failed())
	switch {
	case failed == 0 && r.TreatmentErr == nil:
		return "ok"
	case failed == len(r.Teeth) && len(r.Teeth) > 0:
		return "failed"
	default:
		return "partial"
	}
}
