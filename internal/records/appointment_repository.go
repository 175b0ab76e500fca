package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AppointmentRepository reads the booking system's appointment rows and the
// appointment-tooth junction.
type AppointmentRepository struct {
	db db
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	if pool == nil {
		panic("records: pgx pool required")
	}
	return &AppointmentRepository{db: pool}
}

// NewAppointmentRepositoryWithDB allows injecting a mock database for testing.
func NewAppointmentRepositoryWithDB(db db) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Get returns an appointment, or nil when it does not exist.
func (r *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*AppointmentRecord, error) {
	var rec AppointmentRecord
	err := r.db.QueryRow(ctx, `
		SELECT id, patient_id, appointment_type, status, linked_treatment_id, created_at, updated_at
		FROM appointments WHERE id = $1`, id).Scan(
		&rec.ID, &rec.PatientID, &rec.AppointmentType, &rec.Status,
		&rec.LinkedTreatmentID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("records: get appointment: %w", err)
	}
	return &rec, nil
}

// GetLinkedTeeth returns the junction rows for one appointment.
func (r *AppointmentRepository) GetLinkedTeeth(ctx context.Context, appointmentID uuid.UUID) ([]AppointmentToothLink, error) {
	rows, err := r.db.Query(ctx, `
		SELECT appointment_id, tooth_number, tooth_diagnosis_id, diagnosis_note
		FROM appointment_teeth
		WHERE appointment_id = $1
		ORDER BY tooth_number`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("records: get linked teeth: %w", err)
	}
	defer rows.Close()

	var out []AppointmentToothLink
	for rows.Next() {
		var link AppointmentToothLink
		if err := rows.Scan(&link.AppointmentID, &link.ToothNumber,
			&link.ToothDiagnosisID, &link.DiagnosisNote); err != nil {
			return nil, fmt.Errorf("records: scan tooth link: %w", err)
		}
		out = append(out, link)
	}
	return out, rows.Err()
}
