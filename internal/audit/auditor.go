package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/brightsmile/dental-platform/internal/dental"
	"github.com/brightsmile/dental-platform/internal/observability/metrics"
	"github.com/brightsmile/dental-platform/internal/records"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

var tracer = otel.Tracer("dental/audit")

// ToothStore is the tooth-history surface the sweep needs.
type ToothStore interface {
	ListPatients(ctx context.Context) ([]uuid.UUID, error)
	ListCurrent(ctx context.Context, patientID uuid.UUID) ([]records.ToothRecord, error)
	Append(ctx context.Context, rec records.ToothRecord) error
}

// CorrectionSink receives one entry per repaired record.
type CorrectionSink interface {
	LogCorrection(ctx context.Context, entry CorrectionEntry) error
}

// SweepReport summarizes one run.
type SweepReport struct {
	PatientsSwept int           `json:"patients_swept"`
	TeethChecked  int           `json:"teeth_checked"`
	Corrections   int           `json:"corrections"`
	Failures      int           `json:"failures"`
	Duration      time.Duration `json:"duration_ns"`
}

// Auditor recomputes expected (status, color) for every current tooth record
// and appends corrections for drift. The sweep is idempotent: a second run
// over unchanged data produces zero corrections. Patients are independent
// shards, swept concurrently; cancellation is honored at shard boundaries and
// every applied correction is individually valid, so an interrupted sweep
// leaves no invalid state.
type Auditor struct {
	teeth       ToothStore
	corrections CorrectionSink
	metrics     *metrics.EngineMetrics
	logger      *logging.Logger
	concurrency int
	now         func() time.Time
}

func NewAuditor(teeth ToothStore, corrections CorrectionSink, m *metrics.EngineMetrics, logger *logging.Logger) *Auditor {
	if teeth == nil {
		panic("audit: tooth store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Auditor{
		teeth:       teeth,
		corrections: corrections,
		metrics:     m,
		logger:      logger,
		concurrency: 4,
		now:         time.Now,
	}
}

// WithConcurrency bounds the number of patients swept in parallel.
func (a *Auditor) WithConcurrency(n int) *Auditor {
	if n > 0 {
		a.concurrency = n
	}
	return a
}

// WithClock overrides the timestamp source (tests).
func (a *Auditor) WithClock(now func() time.Time) *Auditor {
	if now != nil {
		a.now = now
	}
	return a
}

// Expected recomputes the status a record's stored text evidence implies:
// final treatment evidence overrides the initial diagnosis classification.
func Expected(rec records.ToothRecord) dental.Status {
	expected := dental.ClassifyInitial(rec.PrimaryDiagnosis, rec.RecommendedTreatment)
	if rec.TreatmentProvided != "" {
		if final, ok := dental.ClassifyFinal(rec.TreatmentProvided); ok {
			expected = final
		}
	}
	return expected
}

// Sweep runs one full pass. It returns the report alongside ctx.Err() when
// cancelled mid-run.
func (a *Auditor) Sweep(ctx context.Context) (*SweepReport, error) {
	ctx, span := tracer.Start(ctx, "audit.sweep")
	defer span.End()

	start := a.now()
	patients, err := a.teeth.ListPatients(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report SweepReport
	)
	sem := make(chan struct{}, a.concurrency)

	for _, patientID := range patients {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(patientID uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()
			checked, corrected, failed := a.sweepPatient(ctx, patientID)
			mu.Lock()
			report.PatientsSwept++
			report.TeethChecked += checked
			report.Corrections += corrected
			report.Failures += failed
			mu.Unlock()
		}(patientID)
	}
	wg.Wait()

	report.Duration = a.now().Sub(start)
	a.metrics.ObserveSweep(report.TeethChecked, report.Duration.Seconds())
	span.SetAttributes(
		attribute.Int("patients", report.PatientsSwept),
		attribute.Int("corrections", report.Corrections),
	)
	a.logger.Info("consistency sweep finished",
		"patients", report.PatientsSwept,
		"teeth_checked", report.TeethChecked,
		"corrections", report.Corrections,
		"failures", report.Failures,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return &report, ctx.Err()
}

func (a *Auditor) sweepPatient(ctx context.Context, patientID uuid.UUID) (checked, corrected, failed int) {
	teeth, err := a.teeth.ListCurrent(ctx, patientID)
	if err != nil {
		a.logger.Error("sweep: list teeth failed", "error", err, "patient_id", patientID)
		return 0, 0, 1
	}
	for _, rec := range teeth {
		checked++
		expected := Expected(rec)
		expectedColor := dental.ColorOf(expected)
		if rec.Status == expected && rec.ColorCode == expectedColor {
			continue
		}
		if err := a.correct(ctx, rec, expected); err != nil {
			failed++
			a.logger.Error("sweep: correction failed",
				"error", err,
				"patient_id", patientID,
				"tooth_number", rec.ToothNumber,
			)
			continue
		}
		corrected++
		a.metrics.ObserveCorrection()
	}
	return checked, corrected, failed
}

func (a *Auditor) correct(ctx context.Context, rec records.ToothRecord, expected dental.Status) error {
	next := rec.Succeeds(expected, a.now().UTC())
	if err := a.teeth.Append(ctx, next); err != nil {
		return err
	}
	if a.corrections == nil {
		return nil
	}
	return a.corrections.LogCorrection(ctx, CorrectionEntry{
		PatientID:   rec.PatientID,
		ToothNumber: rec.ToothNumber,
		FromStatus:  rec.Status,
		FromColor:   rec.ColorCode,
		ToStatus:    next.Status,
		ToColor:     next.ColorCode,
		Reason:      "audit",
		CreatedAt:   next.UpdatedAt,
	})
}
