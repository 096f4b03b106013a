package sim

import (
	"fmt"
	"testing"
)

// testServers is the server pair used by the fake cost model.
var testServers = ServerPair{Old: "old-srv", New: "new-srv"}

// fakeCost is a linear cost model: carbon figures are per unit of carbon
// intensity, keep-alive carbon is per instance-minute.
type fakeCost struct {
	coldST, warmST         [2]float64
	coldCarbon, warmCarbon [2]float64
	kaPerMinute            [2]float64
	missing                map[string]bool // function names without a profile
}

// newFakeCost returns a model where New is faster but dirtier than Old.
func newFakeCost() *fakeCost {
	return &fakeCost{
		coldST:      [2]float64{2, 1},
		warmST:      [2]float64{0.5, 0.25},
		coldCarbon:  [2]float64{1, 3},
		warmCarbon:  [2]float64{0.2, 0.6},
		kaPerMinute: [2]float64{0.01, 0.03},
	}
}

func (f *fakeCost) generation(fn Function, server string) (Generation, error) {
	if f.missing[fn.Name] {
		return Old, fmt.Errorf("function %q: %w", fn.Name, ErrProfileMissing)
	}
	switch server {
	case testServers.Old:
		return Old, nil
	case testServers.New:
		return New, nil
	}
	return Old, fmt.Errorf("server %q: %w", server, ErrProfileMissing)
}

func (f *fakeCost) ServiceTimes(fn Function, server string) (float64, float64, error) {
	g, err := f.generation(fn, server)
	if err != nil {
		return 0, 0, err
	}
	return f.coldST[g], f.warmST[g], nil
}

func (f *fakeCost) ExecutionCarbon(fn Function, pair ServerPair, ci float64) (cold, warm [2]float64, err error) {
	for _, g := range Generations {
		if _, err := f.generation(fn, pair.Server(g)); err != nil {
			return cold, warm, err
		}
		cold[g] = f.coldCarbon[g] * ci
		warm[g] = f.warmCarbon[g] * ci
	}
	return cold, warm, nil
}

func (f *fakeCost) KeepAliveCarbon(fn Function, server string, minutes, ci float64) (float64, error) {
	g, err := f.generation(fn, server)
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		return 0, nil
	}
	return f.kaPerMinute[g] * minutes * ci, nil
}

// fixedStrategy always returns the same decision and counts calls.
type fixedStrategy struct {
	decision Decision
	calls    int
}

func (f *fixedStrategy) Name() string { return "fixed" }

func (f *fixedStrategy) Decide(int64, float64, []int) (Decision, error) {
	f.calls++
	return f.decision, nil
}

// testConfig returns a config simulating steps [0, horizon) with roomy pools.
func testConfig(horizon int64, lambda float64, durations ...int) SimConfig {
	cfg := DefaultSimConfig()
	cfg.Servers = testServers
	cfg.Durations = durations
	cfg.Window = WindowConfig{WindowSize: 3, Start: 0, Horizon: horizon}
	cfg.Memory = MemoryConfig{OldLimitMB: 1e6, NewLimitMB: 1e6}
	cfg.Policy.Lambda = lambda
	return cfg
}

// testFunctions names n functions f0..fn-1 with the given memory.
func testFunctions(n int, memoryMB float64) []Function {
	fns := make([]Function, n)
	for i := range fns {
		fns[i] = Function{ID: i, Name: fmt.Sprintf("f%d", i), MemoryMB: memoryMB}
	}
	return fns
}

func mustNewSimulator(t *testing.T, cfg SimConfig, fns []Function, invocations [][]int, carbon []float64, cm CostModel) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, fns, invocations, carbon, cm, nil)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return s
}
