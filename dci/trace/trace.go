package trace

// TraceLevel controls the verbosity of placement tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelPlacements captures every DCI placement and every subframe.
	TraceLevelPlacements TraceLevel = "placements"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:       true,
	TraceLevelPlacements: true,
	"":                   true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// ScheduleTrace collects scheduler decisions during a replay run.
type ScheduleTrace struct {
	Level      TraceLevel
	Subframes  []SubframeRecord
	Placements []PlacementRecord
}

// NewScheduleTrace creates a ScheduleTrace ready for recording.
func NewScheduleTrace(level TraceLevel) *ScheduleTrace {
	return &ScheduleTrace{
		Level:      level,
		Subframes:  make([]SubframeRecord, 0),
		Placements: make([]PlacementRecord, 0),
	}
}

// Enabled reports whether records should be collected. Safe on nil.
func (st *ScheduleTrace) Enabled() bool {
	return st != nil && st.Level == TraceLevelPlacements
}

// RecordSubframe appends a subframe record.
func (st *ScheduleTrace) RecordSubframe(record SubframeRecord) {
	st.Subframes = append(st.Subframes, record)
}

// RecordPlacement appends a placement record.
func (st *ScheduleTrace) RecordPlacement(record PlacementRecord) {
	st.Placements = append(st.Placements, record)
}
