package dental

import "testing"

func TestClassifyInitial(t *testing.T) {
	tests := []struct {
		name      string
		diagnosis string
		plan      string
		want      Status
	}{
		{"deep caries", "Deep caries on occlusal surface", "", StatusCaries},
		{"cavity keyword", "large cavity distal", "", StatusCaries},
		{"demineralization", "early demineralization noted", "", StatusCaries},
		{"missing tooth", "Tooth missing since 2019", "", StatusMissing},
		{"extraction done", "extraction done previously", "", StatusMissing},
		{"pulpitis", "Irreversible pulpitis", "", StatusAttention},
		{"periapical lesion", "periapical radiolucency", "", StatusAttention},
		{"endo referral", "needs endo evaluation", "", StatusAttention},
		{"fracture", "crown fracture mesial cusp", "", StatusAttention},
		{"crack", "visible crack line", "", StatusAttention},
		{"periodontal", "periodontal pocketing 6mm", "", StatusAttention},
		{"abscess", "buccal abscess present", "", StatusAttention},
		{"impacted", "impacted third molar", "", StatusAttention},
		{"plan text matches", "", "treat caries with composite", StatusCaries},
		{"case insensitive", "DEEP CARIES", "", StatusCaries},
		{"no match", "routine checkup, all good", "", StatusHealthy},
		{"empty", "", "", StatusHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyInitial(tt.diagnosis, tt.plan); got != tt.want {
				t.Errorf("ClassifyInitial(%q, %q) = %s, want %s", tt.diagnosis, tt.plan, got, tt.want)
			}
		})
	}
}

// "missing" outranks "caries" when both keywords appear: the rule list is
// ordered and the first match wins.
func TestClassifyInitialRulePriority(t *testing.T) {
	got := ClassifyInitial("tooth missing, adjacent caries", "")
	if got != StatusMissing {
		t.Errorf("expected missing to win over caries, got %s", got)
	}

	got = ClassifyInitial("pulpitis secondary to deep caries", "")
	if got != StatusAttention {
		t.Errorf("expected pulpitis rule to win over caries, got %s", got)
	}
}

func TestClassifyFinal(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Status
		matched bool
	}{
		{"root canal", "Root Canal Treatment", StatusRootCanal, true},
		{"rct abbreviation", "RCT completed 46", StatusRootCanal, true},
		{"filling", "composite filling", StatusFilled, true},
		{"restoration", "amalgam restoration replaced", StatusFilled, true},
		{"crown", "zirconia crown cemented", StatusCrown, true},
		{"onlay", "ceramic onlay", StatusCrown, true},
		{"extraction", "surgical extraction", StatusMissing, true},
		{"implant", "implant placement stage 1", StatusImplant, true},
		{"scaling", "full mouth scaling", StatusHealthy, true},
		{"polishing", "polishing done", StatusHealthy, true},
		{"periodontal", "periodontal therapy", StatusAttention, true},
		{"unrecognized", "Fluoride varnish application", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyFinal(tt.text)
			if ok != tt.matched {
				t.Fatalf("ClassifyFinal(%q) matched = %v, want %v", tt.text, ok, tt.matched)
			}
			if got != tt.want {
				t.Errorf("ClassifyFinal(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

// "root canal" must outrank "crown": a treatment described as "root canal and
// crown" is recorded as root_canal.
func TestClassifyFinalRulePriority(t *testing.T) {
	got, ok := ClassifyFinal("root canal followed by crown placement")
	if !ok || got != StatusRootCanal {
		t.Errorf("expected root_canal, got %s (matched=%v)", got, ok)
	}
}
