package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightsmile/dental-platform/internal/records"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

// ChartReader lists a patient's current tooth records.
type ChartReader interface {
	ListCurrent(ctx context.Context, patientID uuid.UUID) ([]records.ToothRecord, error)
}

// PatientTeethHandler serves the dental chart view.
type PatientTeethHandler struct {
	teeth  ChartReader
	logger *logging.Logger
}

func NewPatientTeethHandler(teeth ChartReader, logger *logging.Logger) *PatientTeethHandler {
	if teeth == nil {
		panic("handlers: chart reader cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PatientTeethHandler{teeth: teeth, logger: logger}
}

// ToothView is one chart entry.
type ToothView struct {
	ToothNumber          int       `json:"tooth_number"`
	Status               string    `json:"status"`
	ColorCode            string    `json:"color_code"`
	PrimaryDiagnosis     string    `json:"primary_diagnosis,omitempty"`
	RecommendedTreatment string    `json:"recommended_treatment,omitempty"`
	TreatmentProvided    string    `json:"treatment_provided,omitempty"`
	FollowUpRequired     bool      `json:"follow_up_required"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// GetChart returns the current record of every charted tooth, ordered by
// FDI number.
// GET /admin/teeth/{patientID}
func (h *PatientTeethHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		jsonError(w, "patientID must be a UUID", http.StatusBadRequest)
		return
	}

	current, err := h.teeth.ListCurrent(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to load tooth chart", "error", err, "patient_id", patientID)
		jsonError(w, "failed to load chart", http.StatusInternalServerError)
		return
	}

	views := make([]ToothView, 0, len(current))
	for _, rec := range current {
		views = append(views, ToothView{
			ToothNumber:          rec.ToothNumber,
			Status:               string(rec.Status),
			ColorCode:            rec.ColorCode,
			PrimaryDiagnosis:     rec.PrimaryDiagnosis,
			RecommendedTreatment: rec.RecommendedTreatment,
			TreatmentProvided:    rec.TreatmentProvided,
			FollowUpRequired:     rec.FollowUpRequired,
			UpdatedAt:            rec.UpdatedAt,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ToothNumber < views[j].ToothNumber })

	writeJSON(w, http.StatusOK, map[string]any{
		"patient_id": patientID,
		"teeth":      views,
	})
}
