// Package audit implements the consistency sweep that detects and repairs
// drift between stored tooth status/color and what the classifiers produce,
// plus the append-only correction log operators review.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-platform/internal/dental"
)

// CorrectionEntry records one repaired drift occurrence.
type CorrectionEntry struct {
	ID          uuid.UUID     `json:"id"`
	PatientID   uuid.UUID     `json:"patient_id"`
	ToothNumber int           `json:"tooth_number"`
	FromStatus  dental.Status `json:"from_status"`
	FromColor   string        `json:"from_color"`
	ToStatus    dental.Status `json:"to_status"`
	ToColor     string        `json:"to_color"`
	Reason      string        `json:"reason"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CorrectionStore persists correction entries for operator review.
type CorrectionStore struct {
	db *sql.DB
}

func NewCorrectionStore(db *sql.DB) *CorrectionStore {
	return &CorrectionStore{db: db}
}

// LogCorrection appends one entry. Entries are immutable once written.
func (s *CorrectionStore) LogCorrection(ctx context.Context, entry CorrectionEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tooth_status_corrections
		    (id, patient_id, tooth_number, from_status, from_color, to_status, to_color, reason, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		entry.ID, entry.PatientID, entry.ToothNumber,
		entry.FromStatus, entry.FromColor, entry.ToStatus, entry.ToColor,
		entry.Reason, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("audit: log correction: %w", err)
	}
	return nil
}

// ListRecent returns the newest corrections, most recent first.
func (s *CorrectionStore) ListRecent(ctx context.Context, limit int) ([]CorrectionEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, tooth_number, from_status, from_color, to_status, to_color, reason, created_at
		FROM tooth_status_corrections
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list corrections: %w", err)
	}
	defer rows.Close()

	var out []CorrectionEntry
	for rows.Next() {
		var e CorrectionEntry
		if err := rows.Scan(&e.ID, &e.PatientID, &e.ToothNumber,
			&e.FromStatus, &e.FromColor, &e.ToStatus, &e.ToColor,
			&e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan correction: %w", err)
		}
		out = append(out, e)
	}
	if out == nil {
		out = []CorrectionEntry{}
	}
	return out, rows.Err()
}
