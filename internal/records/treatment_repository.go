package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightsmile/dental-platform/internal/dental"
)

// TreatmentRepository persists treatment rows.
type TreatmentRepository struct {
	db db
}

func NewTreatmentRepository(pool *pgxpool.Pool) *TreatmentRepository {
	if pool == nil {
		panic("records: pgx pool required")
	}
	return &TreatmentRepository{db: pool}
}

// NewTreatmentRepositoryWithDB allows injecting a mock database for testing.
func NewTreatmentRepositoryWithDB(db db) *TreatmentRepository {
	return &TreatmentRepository{db: db}
}

// Get returns a treatment, or nil when it does not exist.
func (r *TreatmentRepository) Get(ctx context.Context, id uuid.UUID) (*TreatmentRecord, error) {
	var rec TreatmentRecord
	err := r.db.QueryRow(ctx, `
		SELECT id, patient_id, consultation_id, tooth_diagnosis_id, tooth_number,
		       treatment_type, status, planned_status, created_at, updated_at
		FROM treatments WHERE id = $1`, id).Scan(
		&rec.ID, &rec.PatientID, &rec.ConsultationID, &rec.ToothDiagnosisID,
		&rec.ToothNumber, &rec.TreatmentType, &rec.Status, &rec.PlannedStatus,
		&rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("records: get treatment: %w", err)
	}
	return &rec, nil
}

// UpdateStatus mirrors an appointment lifecycle state onto the treatment row.
// The write is idempotent: repeating it with the same status is a no-op
// beyond the updated_at bump.
func (r *TreatmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status dental.TreatmentStatus) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE treatments
		SET status = $2, planned_status = $2, updated_at = $3
		WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("records: update treatment status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("records: update treatment status: treatment %s not found", id)
	}
	return nil
}
