package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// db is the pgx surface the repositories need; pgxpool.Pool satisfies it and
// tests inject pgxmock.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const toothColumns = `id, patient_id, tooth_number, status, color_code,
	       primary_diagnosis, recommended_treatment, treatment_provided,
	       follow_up_required, source_consultation_id, updated_at`

// ToothRepository persists the append-only tooth history.
type ToothRepository struct {
	db db
}

// NewToothRepository creates a repository backed by a pgx pool.
func NewToothRepository(pool *pgxpool.Pool) *ToothRepository {
	if pool == nil {
		panic("records: pgx pool required")
	}
	return &ToothRepository{db: pool}
}

// NewToothRepositoryWithDB allows injecting a mock database for testing.
func NewToothRepositoryWithDB(db db) *ToothRepository {
	return &ToothRepository{db: db}
}

// GetCurrent returns the most recent record for a (patient, tooth) pair, or
// nil when the tooth has no history.
func (r *ToothRepository) GetCurrent(ctx context.Context, patientID uuid.UUID, toothNumber int) (*ToothRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+toothColumns+`
		FROM tooth_records
		WHERE patient_id = $1 AND tooth_number = $2
		ORDER BY updated_at DESC
		LIMIT 1`, patientID, toothNumber)
	rec, err := scanTooth(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("records: get current tooth: %w", err)
	}
	return rec, nil
}

// Append inserts a new history row. The insert is idempotent under retry with
// an identical record: a duplicate id is a no-op.
func (r *ToothRepository) Append(ctx context.Context, rec ToothRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tooth_records (id, patient_id, tooth_number, status, color_code,
		    primary_diagnosis, recommended_treatment, treatment_provided,
		    follow_up_required, source_consultation_id, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.PatientID, rec.ToothNumber, rec.Status, rec.ColorCode,
		rec.PrimaryDiagnosis, rec.RecommendedTreatment, rec.TreatmentProvided,
		rec.FollowUpRequired, rec.SourceConsultationID, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("records: append tooth record: %w", err)
	}
	return nil
}

// ListCurrent returns the latest record per tooth for one patient.
func (r *ToothRepository) ListCurrent(ctx context.Context, patientID uuid.UUID) ([]ToothRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (tooth_number) `+toothColumns+`
		FROM tooth_records
		WHERE patient_id = $1
		ORDER BY tooth_number, updated_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("records: list current teeth: %w", err)
	}
	defer rows.Close()

	var out []ToothRecord
	for rows.Next() {
		rec, err := scanTooth(rows)
		if err != nil {
			return nil, fmt.Errorf("records: scan tooth record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// ListPatients returns every patient id with at least one tooth record,
// ordered for stable sweep sharding.
func (r *ToothRepository) ListPatients(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT patient_id FROM tooth_records ORDER BY patient_id`)
	if err != nil {
		return nil, fmt.Errorf("records: list patients: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("records: scan patient id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanTooth(row pgx.Row) (*ToothRecord, error) {
	var rec ToothRecord
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.ToothNumber, &rec.Status, &rec.ColorCode,
		&rec.PrimaryDiagnosis, &rec.RecommendedTreatment, &rec.TreatmentProvided,
		&rec.FollowUpRequired, &rec.SourceConsultationID, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
