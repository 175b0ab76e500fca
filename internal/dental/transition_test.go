package dental

import "testing"

func TestNextStatusTransitionTable(t *testing.T) {
	tests := []struct {
		name          string
		appointment   AppointmentStatus
		treatmentType string
		prior         Status
		want          Status
	}{
		// scheduled / confirmed keep a non-healthy prior status
		{"scheduled keeps caries", AppointmentScheduled, "Root Canal Treatment", StatusCaries, StatusCaries},
		{"confirmed keeps missing", AppointmentConfirmed, "", StatusMissing, StatusMissing},
		// healthy prior falls through to classifying the treatment type
		{"scheduled classifies treatment", AppointmentScheduled, "caries excavation", StatusHealthy, StatusCaries},
		// an unrecognized scheduled treatment must not read as healthy
		{"scheduled unknown treatment flags", AppointmentScheduled, "Whitening consult", StatusHealthy, StatusAttention},
		{"scheduled no treatment flags", AppointmentScheduled, "", "", StatusAttention},
		{"confirmed no prior flags", AppointmentConfirmed, "", StatusHealthy, StatusAttention},

		// in_progress overrides everything
		{"in_progress overrides filled", AppointmentInProgress, "", StatusFilled, StatusAttention},
		{"in_progress overrides missing", AppointmentInProgress, "extraction", StatusMissing, StatusAttention},
		{"in_progress with no prior", AppointmentInProgress, "", "", StatusAttention},

		// completed classifies the provided treatment
		{"completed root canal", AppointmentCompleted, "Root Canal Treatment", StatusCaries, StatusRootCanal},
		{"completed filling", AppointmentCompleted, "composite filling", StatusCaries, StatusFilled},
		{"completed extraction", AppointmentCompleted, "surgical extraction", StatusAttention, StatusMissing},
		// unrecognized treatment type assumes resolution
		{"completed unrecognized resolves", AppointmentCompleted, "Fluoride varnish application", StatusCaries, StatusHealthy},
		{"completed no treatment resolves", AppointmentCompleted, "", StatusCaries, StatusHealthy},

		// cancelled / no_show revert to last known state
		{"cancelled reverts", AppointmentCancelled, "Root Canal Treatment", StatusCaries, StatusCaries},
		{"cancelled healthy prior kept", AppointmentCancelled, "", StatusHealthy, StatusHealthy},
		{"no_show reverts", AppointmentNoShow, "", StatusFilled, StatusFilled},
		{"no_show without prior flags", AppointmentNoShow, "", "", StatusAttention},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStatus(tt.appointment, tt.treatmentType, tt.prior)
			if got != tt.want {
				t.Errorf("NextStatus(%s, %q, %s) = %s, want %s",
					tt.appointment, tt.treatmentType, tt.prior, got, tt.want)
			}
		})
	}
}

func TestNextStatusIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		got := NextStatus(AppointmentScheduled, "Root Canal Treatment", StatusCaries)
		if got != StatusCaries {
			t.Fatalf("run %d: got %s, want caries", i, got)
		}
	}
}

func TestMirrorTreatmentStatus(t *testing.T) {
	tests := []struct {
		appointment AppointmentStatus
		want        TreatmentStatus
	}{
		{AppointmentScheduled, TreatmentPending},
		{AppointmentConfirmed, TreatmentPending},
		{AppointmentInProgress, TreatmentInProgress},
		{AppointmentCompleted, TreatmentCompleted},
		{AppointmentCancelled, TreatmentCancelled},
		{AppointmentNoShow, TreatmentCancelled},
	}
	for _, tt := range tests {
		if got := MirrorTreatmentStatus(tt.appointment); got != tt.want {
			t.Errorf("MirrorTreatmentStatus(%s) = %s, want %s", tt.appointment, got, tt.want)
		}
	}
}

func TestValidAppointmentStatus(t *testing.T) {
	if !ValidAppointmentStatus(AppointmentNoShow) {
		t.Error("no_show should be valid")
	}
	if ValidAppointmentStatus("rescheduled") {
		t.Error("rescheduled is not a lifecycle state")
	}
}
