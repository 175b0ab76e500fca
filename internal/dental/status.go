// Package dental holds the clinical state vocabulary and the pure decision
// functions that derive a tooth's status from appointment lifecycle and
// free-text clinical notes.
package dental

// Status is the closed vocabulary of tooth states rendered on the chart.
type Status string

const (
	StatusHealthy          Status = "healthy"
	StatusCaries           Status = "caries"
	StatusFilled           Status = "filled"
	StatusCrown            Status = "crown"
	StatusMissing          Status = "missing"
	StatusAttention        Status = "attention"
	StatusRootCanal        Status = "root_canal"
	StatusExtractionNeeded Status = "extraction_needed"
	StatusImplant          Status = "implant"
)

// DefaultColor is the color for healthy teeth and for any status value the
// chart does not recognize. Color is a display concern and must never block a
// clinical write.
const DefaultColor = "#22c55e"

// statusColors is the canonical status -> hex mapping. Crown is #eab308; the
// purple #a855f7 that appears in historical rows is drift and gets corrected
// by the consistency sweep.
var statusColors = map[Status]string{
	StatusHealthy:          DefaultColor,
	StatusCaries:           "#ef4444",
	StatusFilled:           "#3b82f6",
	StatusCrown:            "#eab308",
	StatusMissing:          "#6b7280",
	StatusAttention:        "#f97316",
	StatusExtractionNeeded: "#f97316",
	StatusRootCanal:        "#8b5cf6",
	StatusImplant:          "#06b6d4",
}

// ColorOf returns the chart color for a status. It is total: unknown or
// garbage status strings resolve to the healthy color rather than failing.
func ColorOf(s Status) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return DefaultColor
}

// Known reports whether s is part of the enumerated vocabulary.
func Known(s Status) bool {
	_, ok := statusColors[s]
	return ok
}
