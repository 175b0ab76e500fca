package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/brightsmile/dental-platform/internal/audit"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

// Sweeper runs one consistency pass on demand.
type Sweeper interface {
	Sweep(ctx context.Context) (*audit.SweepReport, error)
}

// CorrectionLister exposes the recent correction log.
type CorrectionLister interface {
	ListRecent(ctx context.Context, limit int) ([]audit.CorrectionEntry, error)
}

// AdminAuditHandler exposes the on-demand sweep and the correction log.
type AdminAuditHandler struct {
	auditor     Sweeper
	corrections CorrectionLister
	logger      *logging.Logger
}

func NewAdminAuditHandler(auditor Sweeper, corrections CorrectionLister, logger *logging.Logger) *AdminAuditHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAuditHandler{auditor: auditor, corrections: corrections, logger: logger}
}

// RunSweep triggers a sweep and waits for its report.
// POST /admin/audit/run
func (h *AdminAuditHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	if h.auditor == nil {
		jsonError(w, "auditor not configured", http.StatusServiceUnavailable)
		return
	}
	report, err := h.auditor.Sweep(r.Context())
	if err != nil {
		h.logger.Error("on-demand sweep failed", "error", err)
		if report != nil {
			// Partial report from an interrupted sweep is still useful.
			writeJSON(w, http.StatusAccepted, report)
			return
		}
		jsonError(w, "sweep failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListCorrections returns the newest correction entries.
// GET /admin/audit/corrections?limit=50
func (h *AdminAuditHandler) ListCorrections(w http.ResponseWriter, r *http.Request) {
	if h.corrections == nil {
		jsonError(w, "correction log not configured", http.StatusServiceUnavailable)
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			jsonError(w, "limit must be between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := h.corrections.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list corrections", "error", err)
		jsonError(w, "failed to list corrections", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"corrections": entries})
}
