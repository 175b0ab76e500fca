package cascade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-platform/internal/dental"
	"github.com/brightsmile/dental-platform/internal/events"
	"github.com/brightsmile/dental-platform/internal/records"
)

type fakeToothStore struct {
	current   map[int]*records.ToothRecord
	appended  []records.ToothRecord
	failTeeth map[int]error
}

func newFakeToothStore() *fakeToothStore {
	return &fakeToothStore{current: map[int]*records.ToothRecord{}, failTeeth: map[int]error{}}
}

func (f *fakeToothStore) GetCurrent(ctx context.Context, patientID uuid.UUID, toothNumber int) (*records.ToothRecord, error) {
	return f.current[toothNumber], nil
}

func (f *fakeToothStore) Append(ctx context.Context, rec records.ToothRecord) error {
	if err := f.failTeeth[rec.ToothNumber]; err != nil {
		return err
	}
	f.appended = append(f.appended, rec)
	return nil
}

type fakeAppointmentStore struct {
	appt  *records.AppointmentRecord
	links []records.AppointmentToothLink
}

func (f *fakeAppointmentStore) Get(ctx context.Context, id uuid.UUID) (*records.AppointmentRecord, error) {
	if f.appt == nil || f.appt.ID != id {
		return nil, nil
	}
	return f.appt, nil
}

func (f *fakeAppointmentStore) GetLinkedTeeth(ctx context.Context, appointmentID uuid.UUID) ([]records.AppointmentToothLink, error) {
	return f.links, nil
}

type fakeTreatmentStore struct {
	treatment *records.TreatmentRecord
	updated   []dental.TreatmentStatus
	updateErr error
}

func (f *fakeTreatmentStore) Get(ctx context.Context, id uuid.UUID) (*records.TreatmentRecord, error) {
	if f.treatment == nil || f.treatment.ID != id {
		return nil, nil
	}
	return f.treatment, nil
}

func (f *fakeTreatmentStore) UpdateStatus(ctx context.Context, id uuid.UUID, status dental.TreatmentStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, status)
	return nil
}

type fakeNotifier struct {
	published []events.ToothStatusUpdatedV1
	err       error
}

func (f *fakeNotifier) PublishToothUpdate(ctx context.Context, evt events.ToothStatusUpdatedV1) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, evt)
	return nil
}

func fixture(status dental.AppointmentStatus, treatmentType string, teeth ...int) (*fakeToothStore, *fakeAppointmentStore, *fakeTreatmentStore, *fakeNotifier, uuid.UUID) {
	apptID := uuid.New()
	patientID := uuid.New()
	treatmentID := uuid.New()

	appts := &fakeAppointmentStore{
		appt: &records.AppointmentRecord{
			ID:        apptID,
			PatientID: patientID,
			Status:    status,
		},
	}
	for _, n := range teeth {
		appts.links = append(appts.links, records.AppointmentToothLink{AppointmentID: apptID, ToothNumber: n})
	}

	treatments := &fakeTreatmentStore{}
	if treatmentType != "" {
		appts.appt.LinkedTreatmentID = &treatmentID
		treatments.treatment = &records.TreatmentRecord{
			ID:            treatmentID,
			PatientID:     patientID,
			TreatmentType: treatmentType,
			Status:        dental.TreatmentPending,
		}
	}
	return newFakeToothStore(), appts, treatments, &fakeNotifier{}, apptID
}

func TestApplyCompletedRootCanal(t *testing.T) {
	teeth, appts, treatments, notifier, apptID := fixture(dental.AppointmentCompleted, "Root Canal Treatment", 46)
	teeth.current[46] = &records.ToothRecord{
		ID:          uuid.New(),
		PatientID:   appts.appt.PatientID,
		ToothNumber: 46,
		Status:      dental.StatusCaries,
		ColorCode:   "#ef4444",
		UpdatedAt:   time.Now().Add(-time.Hour),
	}

	p := NewPropagator(teeth, appts, treatments, notifier, nil, nil)
	result, err := p.Apply(context.Background(), apptID)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !result.TreatmentMirrored || len(treatments.updated) != 1 || treatments.updated[0] != dental.TreatmentCompleted {
		t.Errorf("treatment not mirrored to completed: %+v", treatments.updated)
	}
	if len(teeth.appended) != 1 {
		t.Fatalf("expected 1 appended record, got %d", len(teeth.appended))
	}
	rec := teeth.appended[0]
	if rec.Status != dental.StatusRootCanal || rec.ColorCode != "#8b5cf6" {
		t.Errorf("appended %s/%s, want root_canal/#8b5cf6", rec.Status, rec.ColorCode)
	}
	if rec.ColorCode != dental.ColorOf(rec.Status) {
		t.Error("color invariant violated")
	}
	if len(notifier.published) != 1 || notifier.published[0].ToothNumber != 46 {
		t.Errorf("expected 1 notification for tooth 46, got %+v", notifier.published)
	}
}

func TestApplyScheduledKeepsPriorDiagnosis(t *testing.T) {
	teeth, appts, treatments, notifier, apptID := fixture(dental.AppointmentScheduled, "Root Canal Treatment", 46)
	teeth.current[46] = &records.ToothRecord{
		ID:          uuid.New(),
		PatientID:   appts.appt.PatientID,
		ToothNumber: 46,
		Status:      dental.StatusCaries,
		ColorCode:   "#ef4444",
	}

	p := NewPropagator(teeth, appts, treatments, notifier, nil, nil)
	result, err := p.Apply(context.Background(), apptID)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// caries is kept, so nothing changes and nothing is appended
	if len(teeth.appended) != 0 {
		t.Errorf("expected no append for unchanged status, got %d", len(teeth.appended))
	}
	if len(notifier.published) != 0 {
		t.Error("unchanged tooth must not be notified")
	}
	if result.Teeth[0].Changed || result.Teeth[0].Status != dental.StatusCaries {
		t.Errorf("unexpected outcome: %+v", result.Teeth[0])
	}
	// treatment still mirrors to pending
	if len(treatments.updated) != 1 || treatments.updated[0] != dental.TreatmentPending {
		t.Errorf("treatment mirror: %+v", treatments.updated)
	}
}

func TestApplyCompletedUnrecognizedTreatmentResolvesHealthy(t *testing.T) {
	teeth, appts, treatments, notifier, apptID := fixture(dental.AppointmentCompleted, "Fluoride varnish application", 11)
	teeth.current[11] = &records.ToothRecord{
		ID:          uuid.New(),
		PatientID:   appts.appt.PatientID,
		ToothNumber: 11,
		Status:      dental.StatusCaries,
		ColorCode:   "#ef4444",
	}

	p := NewPropagator(teeth, appts, treatments, notifier, nil, nil)
	if _, err := p.Apply(context.Background(), apptID); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(teeth.appended) != 1 {
		t.Fatalf("expected 1 append, got %d", len(teeth.appended))
	}
	if teeth.appended[0].Status != dental.StatusHealthy || teeth.appended[0].ColorCode != "#22c55e" {
		t.Errorf("got %s/%s, want healthy/#22c55e", teeth.appended[0].Status, teeth.appended[0].ColorCode)
	}
}

func TestApplyInProgressOverridesPrior(t *testing.T) {
	teeth, appts, treatments, notifier, apptID := fixture(dental.AppointmentInProgress, "", 21)
	teeth.current[21] = &records.ToothRecord{
		ID:          uuid.New(),
		PatientID:   appts.appt.PatientID,
		ToothNumber: 21,
		Status:      dental.StatusFilled,
		ColorCode:   "#3b82f6",
	}

	p := NewPropagator(teeth, appts, treatments, notifier, nil, nil)
	if _, err := p.Apply(context.Background(), apptID); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(teeth.appended) != 1 || teeth.appended[0].Status != dental.StatusAttention {
		t.Fatalf("in_progress must flag the tooth, got %+v", teeth.appended)
	}
}

func TestApplyPartialFailureIsolation(t *testing.T) {
	teeth, appts, treatments, notifier, apptID := fixture(dental.AppointmentInProgress, "", 36, 46)
	teeth.failTeeth[36] = errors.New("store unavailable")

	p := NewPropagator(teeth, appts, treatments, notifier, nil, nil)
	result, err := p.Apply(context.Background(), apptID)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if len(teeth.appended) != 1 || teeth.appended[0].ToothNumber != 46 {
		t.Fatalf("tooth 46 must still be written, got %+v", teeth.appended)
	}
	failed := result.Failed()
	if len(failed) != 1 || failed[0].ToothNumber != 36 {
		t.Fatalf("expected tooth 36 reported failed, got %+v", failed)
	}
	if len(notifier.published) != 1 || notifier.published[0].ToothNumber != 46 {
		t.Errorf("only the written tooth gets a notification: %+v", notifier.published)
	}
}

func TestApplyRejectsInvalidFDILink(t *testing.T) {
	teeth, appts, treatments, notifier, apptID := fixture(dental.AppointmentInProgress, "", 46)
	appts.links = append(appts.links, records.AppointmentToothLink{AppointmentID: apptID, ToothNumber: 99})

	p := NewPropagator(teeth, appts, treatments, notifier, nil, nil)
	result, err := p.Apply(context.Background(), apptID)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	failed := result.Failed()
	if len(failed) != 1 || !errors.Is(failed[0].Err, ErrInvalidReference) {
		t.Fatalf("expected invalid reference for tooth 99, got %+v", failed)
	}
	// the valid sibling is still processed
	if len(teeth.appended) != 1 || teeth.appended[0].ToothNumber != 46 {
		t.Errorf("valid tooth must still be written: %+v", teeth.appended)
	}
}

func TestApplyMissingAppointment(t *testing.T) {
	teeth, appts, treatments, notifier, _ := fixture(dental.AppointmentCompleted, "", 46)
	p := NewPropagator(teeth, appts, treatments, notifier, nil, nil)
	_, err := p.Apply(context.Background(), uuid.New())
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestApplyDanglingTreatmentReference(t *testing.T) {
	teeth, appts, treatments, notifier, apptID := fixture(dental.AppointmentInProgress, "", 46)
	missing := uuid.New()
	appts.appt.LinkedTreatmentID = &missing
	treatments.treatment = nil

	p := NewPropagator(teeth, appts, treatments, notifier, nil, nil)
	result, err := p.Apply(context.Background(), apptID)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !errors.Is(result.TreatmentErr, ErrInvalidReference) {
		t.Errorf("expected invalid reference on treatment, got %v", result.TreatmentErr)
	}
	// teeth are still cascaded
	if len(teeth.appended) != 1 {
		t.Errorf("teeth must still be processed: %+v", teeth.appended)
	}
}

func TestApplySeedsRecordForUnknownTooth(t *testing.T) {
	teeth, appts, treatments, notifier, apptID := fixture(dental.AppointmentScheduled, "", 46)
	appts.links[0].DiagnosisNote = "deep caries on 46"

	p := NewPropagator(teeth, appts, treatments, notifier, nil, nil)
	if _, err := p.Apply(context.Background(), apptID); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(teeth.appended) != 1 {
		t.Fatalf("expected a seeded record, got %d", len(teeth.appended))
	}
	rec := teeth.appended[0]
	if rec.Status != dental.StatusCaries {
		t.Errorf("diagnosis note should classify to caries, got %s", rec.Status)
	}
	if rec.PrimaryDiagnosis != "deep caries on 46" {
		t.Errorf("diagnosis note must seed the record text, got %q", rec.PrimaryDiagnosis)
	}
	if rec.ColorCode != dental.ColorOf(rec.Status) {
		t.Error("color invariant violated on seeded record")
	}
}

func TestApplyNotificationFailureDoesNotFailTooth(t *testing.T) {
	teeth, appts, treatments, notifier, apptID := fixture(dental.AppointmentInProgress, "", 46)
	notifier.err = errors.New("redis down")

	p := NewPropagator(teeth, appts, treatments, notifier, nil, nil)
	result, err := p.Apply(context.Background(), apptID)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(result.Failed()) != 0 {
		t.Errorf("notification failure must not fail the tooth: %+v", result.Failed())
	}
	if len(teeth.appended) != 1 {
		t.Errorf("record must still be appended")
	}
}
