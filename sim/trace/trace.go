package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures strategy decisions and admission discards.
	TraceLevelDecisions TraceLevel = "decisions"
	// TraceLevelFull additionally captures executions and keep-alive settlements.
	TraceLevelFull TraceLevel = "full"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	TraceLevelFull:      true,
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

// SimulationTrace collects records during a simulation.
type SimulationTrace struct {
	Config      TraceConfig
	Decisions   []DecisionRecord
	Executions  []ExecutionRecord
	Settlements []SettlementRecord
	Admissions  []AdmissionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:      config,
		Decisions:   make([]DecisionRecord, 0),
		Executions:  make([]ExecutionRecord, 0),
		Settlements: make([]SettlementRecord, 0),
		Admissions:  make([]AdmissionRecord, 0),
	}
}

// Enabled reports whether anything is recorded. Safe on a nil trace.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level != TraceLevelNone && st.Config.Level != ""
}

func (st *SimulationTrace) full() bool {
	return st != nil && st.Config.Level == TraceLevelFull
}

// RecordDecision appends a strategy decision.
func (st *SimulationTrace) RecordDecision(record DecisionRecord) {
	if st.Enabled() {
		st.Decisions = append(st.Decisions, record)
	}
}

// RecordAdmission appends an admission discard.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	if st.Enabled() {
		st.Admissions = append(st.Admissions, record)
	}
}

// RecordExecution appends an execution (full level only).
func (st *SimulationTrace) RecordExecution(record ExecutionRecord) {
	if st.full() {
		st.Executions = append(st.Executions, record)
	}
}

// RecordSettlement appends a keep-alive settlement (full level only).
func (st *SimulationTrace) RecordSettlement(record SettlementRecord) {
	if st.full() {
		st.Settlements = append(st.Settlements, record)
	}
}
