// Package auditworker runs the consistency sweep on a fixed schedule.
package auditworker

import (
	"context"
	"errors"
	"time"

	"github.com/brightsmile/dental-platform/internal/audit"
	"github.com/brightsmile/dental-platform/pkg/logging"
)

// Sweeper runs one consistency pass over all patients.
type Sweeper interface {
	Sweep(ctx context.Context) (*audit.SweepReport, error)
}

// Scheduler triggers sweeps on an interval, starting with an immediate pass.
type Scheduler struct {
	auditor  Sweeper
	logger   *logging.Logger
	interval time.Duration
}

func NewScheduler(auditor Sweeper, logger *logging.Logger) *Scheduler {
	if auditor == nil {
		panic("auditworker: auditor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		auditor:  auditor,
		logger:   logger,
		interval: 6 * time.Hour,
	}
}

func (s *Scheduler) WithInterval(d time.Duration) *Scheduler {
	if d > 0 {
		s.interval = d
	}
	return s
}

// Run blocks until ctx is cancelled. A failed sweep is logged and retried at
// the next tick; sweeps are idempotent so overlap with a cascade in flight is
// safe.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	report, err := s.auditor.Sweep(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("scheduled sweep failed", "error", err)
		return
	}
	if report.Corrections > 0 {
		s.logger.Warn("scheduled sweep found drift",
			"corrections", report.Corrections,
			"teeth_checked", report.TeethChecked,
		)
	}
}
