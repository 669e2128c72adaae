package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures fallback, governance and inspection decisions.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a run.
type SimulationTrace struct {
	Config      TraceConfig
	Fallbacks   []FallbackRecord
	Governance  []GovernanceRecord
	Inspections []InspectionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:      config,
		Fallbacks:   make([]FallbackRecord, 0),
		Governance:  make([]GovernanceRecord, 0),
		Inspections: make([]InspectionRecord, 0),
	}
}

// Enabled reports whether records should be collected. Safe on a nil trace.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelDecisions
}

// RecordFallback appends a solver fallback record.
func (st *SimulationTrace) RecordFallback(record FallbackRecord) {
	st.Fallbacks = append(st.Fallbacks, record)
}

// RecordGovernance appends a governance violation record.
func (st *SimulationTrace) RecordGovernance(record GovernanceRecord) {
	st.Governance = append(st.Governance, record)
}

// RecordInspection appends an inspection record.
func (st *SimulationTrace) RecordInspection(record InspectionRecord) {
	st.Inspections = append(st.Inspections, record)
}
