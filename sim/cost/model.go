package cost

import (
	"fmt"

	"github.com/keepalive-sim/keepalive-sim/sim"
)

const (
	joulesPerKWh   = 3.6e6
	secondsPerYear = 365 * 24 * 3600.0
	secondsPerStep = 60.0
)

// Model implements sim.CostModel over a Profile. Carbon is operational
// (energy x carbon intensity in gCO2/kWh) plus amortized embodied carbon.
// Execution amortizes one core's share of the server; keep-alive amortizes the
// instance's share of server memory.
type Model struct {
	servers   map[string]ServerProfile
	functions map[string]FunctionProfile
}

var _ sim.CostModel = (*Model)(nil)

// NewModel indexes a profile for lookup.
func NewModel(p *Profile) *Model {
	m := &Model{
		servers:   make(map[string]ServerProfile, len(p.Servers)),
		functions: make(map[string]FunctionProfile, len(p.Functions)),
	}
	for _, s := range p.Servers {
		m.servers[s.Name] = s
	}
	for _, f := range p.Functions {
		m.functions[f.Name] = f
	}
	return m
}

// Has reports whether fn has timings for both servers of pair.
func (m *Model) Has(fn string, pair sim.ServerPair) bool {
	f, ok := m.functions[fn]
	if !ok {
		return false
	}
	_, okOld := f.Timings[pair.Old]
	_, okNew := f.Timings[pair.New]
	return okOld && okNew
}

func (m *Model) lookup(fn sim.Function, server string) (ServerProfile, Timing, error) {
	s, ok := m.servers[server]
	if !ok {
		return ServerProfile{}, Timing{}, fmt.Errorf("server %q: %w", server, sim.ErrProfileMissing)
	}
	f, ok := m.functions[fn.Name]
	if !ok {
		return ServerProfile{}, Timing{}, fmt.Errorf("function %q: %w", fn.Name, sim.ErrProfileMissing)
	}
	t, ok := f.Timings[server]
	if !ok {
		return ServerProfile{}, Timing{}, fmt.Errorf("function %q on server %q: %w", fn.Name, server, sim.ErrProfileMissing)
	}
	return s, t, nil
}

// ServiceTimes returns the profiled cold and warm service times.
func (m *Model) ServiceTimes(fn sim.Function, server string) (cold, warm float64, err error) {
	_, t, err := m.lookup(fn, server)
	if err != nil {
		return 0, 0, err
	}
	return t.Cold, t.Warm, nil
}

// ExecutionCarbon returns the carbon of one cold and one warm execution on
// each generation of pair.
func (m *Model) ExecutionCarbon(fn sim.Function, pair sim.ServerPair, carbonIntensity float64) (cold, warm [2]float64, err error) {
	for _, g := range sim.Generations {
		s, t, err := m.lookup(fn, pair.Server(g))
		if err != nil {
			return cold, warm, err
		}
		cold[g] = executionCarbon(s, t.Cold, carbonIntensity)
		warm[g] = executionCarbon(s, t.Warm, carbonIntensity)
	}
	return cold, warm, nil
}

// KeepAliveCarbon returns the carbon of holding one idle instance for minutes steps.
func (m *Model) KeepAliveCarbon(fn sim.Function, server string, minutes, carbonIntensity float64) (float64, error) {
	s, _, err := m.lookup(fn, server)
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		return 0, nil
	}
	seconds := minutes * secondsPerStep
	gb := fn.MemoryMB / 1024
	operational := s.IdlePowerWPerGB * gb * seconds / joulesPerKWh * carbonIntensity
	embodied := s.EmbodiedGrams * (gb / s.MemoryGB) * seconds / (s.LifetimeYears * secondsPerYear)
	return operational + embodied, nil
}

func executionCarbon(s ServerProfile, seconds, carbonIntensity float64) float64 {
	operational := s.ExecPowerW * seconds / joulesPerKWh * carbonIntensity
	embodied := s.EmbodiedGrams * seconds / (s.LifetimeYears * secondsPerYear) / float64(s.Cores)
	return operational + embodied
}
