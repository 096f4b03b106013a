package trace

import "testing"

func TestSimulationTrace_RecordDecision_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a decision is recorded
	st.RecordDecision(DecisionRecord{Function: "f0", Clock: 3, Strategy: "firefly", Generation: "new", KeepAlive: 5})

	// THEN the trace holds it
	if len(st.Decisions) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(st.Decisions))
	}
	if st.Decisions[0].KeepAlive != 5 || st.Decisions[0].Generation != "new" {
		t.Errorf("unexpected record %+v", st.Decisions[0])
	}
}

func TestSimulationTrace_DecisionsLevel_SkipsFullRecords(t *testing.T) {
	// GIVEN a trace at decisions level
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN every kind of record is offered
	st.RecordAdmission(AdmissionRecord{Function: "f0", Generation: "old"})
	st.RecordExecution(ExecutionRecord{Function: "f0", Count: 2})
	st.RecordSettlement(SettlementRecord{Function: "f0", Reason: "expired"})

	// THEN only the admission is kept
	if len(st.Admissions) != 1 {
		t.Errorf("expected 1 admission, got %d", len(st.Admissions))
	}
	if len(st.Executions) != 0 || len(st.Settlements) != 0 {
		t.Errorf("expected no executions or settlements, got %d and %d", len(st.Executions), len(st.Settlements))
	}
}

func TestSimulationTrace_FullLevel_RecordsEverything(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelFull})

	st.RecordDecision(DecisionRecord{Function: "f0"})
	st.RecordAdmission(AdmissionRecord{Function: "f0"})
	st.RecordExecution(ExecutionRecord{Function: "f0"})
	st.RecordSettlement(SettlementRecord{Function: "f0"})

	if len(st.Decisions) != 1 || len(st.Admissions) != 1 || len(st.Executions) != 1 || len(st.Settlements) != 1 {
		t.Errorf("expected one of each record, got %d/%d/%d/%d",
			len(st.Decisions), len(st.Admissions), len(st.Executions), len(st.Settlements))
	}
}

func TestSimulationTrace_NoneAndNil_RecordNothing(t *testing.T) {
	// GIVEN a disabled trace and a nil trace
	none := NewSimulationTrace(TraceConfig{Level: TraceLevelNone})
	var nilTrace *SimulationTrace

	// WHEN records are offered
	for _, st := range []*SimulationTrace{none, nilTrace} {
		st.RecordDecision(DecisionRecord{Function: "f0"})
		st.RecordSettlement(SettlementRecord{Function: "f0"})
	}

	// THEN nothing is kept and nothing panics
	if none.Enabled() || nilTrace.Enabled() {
		t.Error("expected both traces disabled")
	}
	if len(none.Decisions) != 0 || len(none.Settlements) != 0 {
		t.Error("expected no records at level none")
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	st.RecordDecision(DecisionRecord{Function: "f0", Clock: 1})
	st.RecordDecision(DecisionRecord{Function: "f1", Clock: 1})
	st.RecordDecision(DecisionRecord{Function: "f0", Clock: 2})

	want := []string{"f0", "f1", "f0"}
	for i, d := range st.Decisions {
		if d.Function != want[i] {
			t.Errorf("decision %d: expected %s, got %s", i, want[i], d.Function)
		}
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"", true},
		{"none", true},
		{"decisions", true},
		{"full", true},
		{"verbose", false},
		{"FULL", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.valid {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
		}
	}
}
