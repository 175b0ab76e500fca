package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters/histograms for the cascade and the
// consistency sweep.
type EngineMetrics struct {
	cascadesTotal      *prometheus.CounterVec
	teethUpdatedTotal  prometheus.Counter
	toothFailuresTotal prometheus.Counter
	notificationsTotal *prometheus.CounterVec
	correctionsTotal   prometheus.Counter
	sweepTeethChecked  prometheus.Counter
	sweepDuration      prometheus.Histogram
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		cascadesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "cascade",
			Name:      "appointments_total",
			Help:      "Appointment status changes processed by the cascade",
		}, []string{"appointment_status", "outcome"}),
		teethUpdatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "cascade",
			Name:      "teeth_updated_total",
			Help:      "Tooth records appended by the cascade",
		}),
		toothFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "cascade",
			Name:      "tooth_failures_total",
			Help:      "Per-tooth failures tolerated during cascades",
		}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "cascade",
			Name:      "notifications_total",
			Help:      "Tooth update notifications published",
		}, []string{"status"}),
		correctionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "audit",
			Name:      "corrections_total",
			Help:      "Drift corrections appended by the consistency sweep",
		}),
		sweepTeethChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "audit",
			Name:      "teeth_checked_total",
			Help:      "Tooth records examined by the consistency sweep",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dental",
			Subsystem: "audit",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of full consistency sweeps",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.cascadesTotal, m.teethUpdatedTotal, m.toothFailuresTotal,
		m.notificationsTotal, m.correctionsTotal, m.sweepTeethChecked, m.sweepDuration)
	return m
}

func (m *EngineMetrics) ObserveCascade(appointmentStatus, outcome string) {
	if m == nil {
		return
	}
	m.cascadesTotal.WithLabelValues(appointmentStatus, outcome).Inc()
}

func (m *EngineMetrics) ObserveToothUpdated() {
	if m == nil {
		return
	}
	m.teethUpdatedTotal.Inc()
}

func (m *EngineMetrics) ObserveToothFailure() {
	if m == nil {
		return
	}
	m.toothFailuresTotal.Inc()
}

func (m *EngineMetrics) ObserveNotification(status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(status).Inc()
}

func (m *EngineMetrics) ObserveCorrection() {
	if m == nil {
		return
	}
	m.correctionsTotal.Inc()
}

func (m *EngineMetrics) ObserveSweep(teethChecked int, seconds float64) {
	if m == nil {
		return
	}
	m.sweepTeethChecked.Add(float64(teethChecked))
	m.sweepDuration.Observe(seconds)
}
