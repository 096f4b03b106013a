// Package trace provides decision-trace recording for keep-alive policy analysis.
// It does not import sim/ and stores plain data types only.
package trace

// DecisionRecord captures one strategy decision for one function.
type DecisionRecord struct {
	Function   string
	Clock      int64
	Strategy   string
	Generation string
	KeepAlive  int
	Fitness    float64 // objective value of the applied decision at decision time
}

// ExecutionRecord captures how one function's invocations were served at one step.
type ExecutionRecord struct {
	Function    string
	Clock       int64
	Count       int
	WarmStarts  int
	ColdStarts  int
	ServiceTime float64
	Carbon      float64
}

// SettlementRecord captures keep-alive carbon charged when a reservation ends.
type SettlementRecord struct {
	Function   string
	Clock      int64
	Generation string
	InvokeTime int64
	Lifetime   int64
	Carbon     float64
	Reason     string // "expired", "consumed", "evicted", "replaced", "horizon"
}

// AdmissionRecord captures a reservation discarded by memory admission control.
type AdmissionRecord struct {
	Function    string
	Clock       int64
	Generation  string
	FootprintMB float64 // pool footprint before the pass
	LimitMB     float64
}
