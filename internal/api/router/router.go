// Package router assembles the HTTP API: the public booking webhook and
// health/metrics endpoints, plus the JWT-guarded admin surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brightsmile/dental-platform/internal/http/handlers"
	httpmiddleware "github.com/brightsmile/dental-platform/internal/http/middleware"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger            *logging.Logger
	AppointmentEvents *handlers.AppointmentEventsHandler
	AdminAudit        *handlers.AdminAuditHandler
	PatientTeeth      *handlers.PatientTeethHandler
	MetricsHandler    http.Handler
	AdminAuthSecret   string

	CORSAllowedOrigins []string

	// WebhookRatePerSec throttles the booking webhook per source IP.
	// Zero disables rate limiting.
	WebhookRatePerSec float64
	WebhookBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AppointmentEvents != nil {
			webhook := public
			if cfg.WebhookRatePerSec > 0 {
				webhook = public.With(httpmiddleware.RateLimit(cfg.WebhookRatePerSec, cfg.WebhookBurst))
			}
			webhook.Post("/webhooks/appointments/status", cfg.AppointmentEvents.HandleStatusChange)
		}
	})

	// Admin endpoints behind JWT auth
	r.Group(func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.AdminAudit != nil {
			admin.Post("/admin/audit/run", cfg.AdminAudit.RunSweep)
			admin.Get("/admin/audit/corrections", cfg.AdminAudit.ListCorrections)
		}
		if cfg.PatientTeeth != nil {
			admin.Get("/admin/teeth/{patientID}", cfg.PatientTeeth.GetChart)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
