package dental

import "strings"

// The classifiers are ordered rule lists over lowercased free text; the first
// matching rule wins. Ordering is load-bearing: clinical notes routinely
// mention several of these keywords at once ("caries, pulpitis suspected"),
// and the rule priority decides which one counts.

type keywordRule struct {
	status   Status
	keywords []string
}

var initialRules = []keywordRule{
	{StatusMissing, []string{"missing", "extracted", "extraction done"}},
	{StatusAttention, []string{"pulpitis", "periapical", "endo"}},
	{StatusAttention, []string{"fracture", "crack"}},
	{StatusAttention, []string{"periodontal", "abscess"}},
	{StatusAttention, []string{"impacted"}},
	{StatusCaries, []string{"caries", "cavity", "decay", "demineral"}},
}

var finalRules = []keywordRule{
	{StatusRootCanal, []string{"root canal", "rct"}},
	{StatusFilled, []string{"filling", "restoration", "composite", "amalgam"}},
	{StatusCrown, []string{"crown", "onlay", "cap"}},
	{StatusMissing, []string{"extraction"}},
	{StatusImplant, []string{"implant"}},
	{StatusHealthy, []string{"scaling", "polishing"}},
	{StatusAttention, []string{"periodontal"}},
}

// ClassifyInitial derives a tooth's status from the operator-entered diagnosis
// and recommended-treatment text. Empty or unmatched text yields
// StatusHealthy; the function never fails.
func ClassifyInitial(diagnosisText, planText string) Status {
	text := strings.ToLower(diagnosisText + " " + planText)
	for _, rule := range initialRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.status
			}
		}
	}
	return StatusHealthy
}

// ClassifyFinal derives a tooth's status from the free-text description of the
// treatment actually provided. The second return value is false when the text
// matches no rule: the classifier refuses to guess and the caller must supply
// its own fallback.
func ClassifyFinal(treatmentText string) (Status, bool) {
	text := strings.ToLower(treatmentText)
	for _, rule := range finalRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.status, true
			}
		}
	}
	return "", false
}
