package sim

import "fmt"

// FireflyConfig groups firefly optimizer parameters.
type FireflyConfig struct {
	PopulationSize int     // fireflies per function (must be > 0)
	Alpha          float64 // randomization step
	Beta           float64 // attractiveness at distance 0
	Gamma          float64 // light absorption coefficient
}

// SwarmConfig groups particle swarm parameters.
type SwarmConfig struct {
	PopulationSize int     // particles per function (must be > 0)
	Inertia        float64 // velocity carried over per call
	Cognitive      float64 // pull toward the particle's own best
	Social         float64 // pull toward the swarm best
}

// WindowConfig selects the replayed steps and the trailing history length.
type WindowConfig struct {
	WindowSize int   // steps of history used for gap estimation (>= 0)
	Start      int64 // first simulated step
	Horizon    int64 // number of simulated steps (> 0)
}

// MemoryConfig bounds the warm pools, in MB.
type MemoryConfig struct {
	OldLimitMB float64
	NewLimitMB float64
}

// Limit returns the memory limit of generation g.
func (m MemoryConfig) Limit(g Generation) float64 {
	if g == New {
		return m.NewLimitMB
	}
	return m.OldLimitMB
}

// PolicyConfig selects the strategy and the pool policies.
type PolicyConfig struct {
	Strategy         string            // see ValidStrategies
	Lambda           float64           // service-time weight in [0,1]
	IncludeKeepAlive bool              // charge expected keep-alive carbon in the objective
	Admission        string            // see ValidAdmissionPolicies
	Replacement      ReplacementPolicy // see ValidReplacementPolicies
}

// SimConfig is the full configuration of one simulation run.
type SimConfig struct {
	Seed      int64
	Servers   ServerPair
	Durations []int // candidate keep-alive durations in minutes
	Window    WindowConfig
	Memory    MemoryConfig
	Policy    PolicyConfig
	Firefly   FireflyConfig
	Swarm     SwarmConfig
}

// DefaultSimConfig returns the defaults of the reference experiments.
func DefaultSimConfig() SimConfig {
	durations := make([]int, 31)
	for i := range durations {
		durations[i] = i
	}
	return SimConfig{
		Seed:      42,
		Servers:   ServerPair{Old: "i3", New: "m5zn"},
		Durations: durations,
		Window:    WindowConfig{WindowSize: 20, Start: 20, Horizon: 24 * 60},
		Memory:    MemoryConfig{OldLimitMB: 512, NewLimitMB: 512},
		Policy: PolicyConfig{
			Strategy:    StrategyFirefly,
			Lambda:      0.5,
			Admission:   AdmissionNewestFirst,
			Replacement: ReplaceOverwrite,
		},
		Firefly: FireflyConfig{PopulationSize: 15, Alpha: 0.2, Beta: 1.0, Gamma: 1.0},
		Swarm:   SwarmConfig{PopulationSize: 15, Inertia: 0.5, Cognitive: 1.5, Social: 1.5},
	}
}

// Validate checks names and parameter ranges.
func (c SimConfig) Validate() error {
	if c.Servers.Old == "" || c.Servers.New == "" {
		return fmt.Errorf("server pair must name both generations, got %+v", c.Servers)
	}
	if len(c.Durations) == 0 {
		return fmt.Errorf("keep-alive duration set must not be empty")
	}
	for _, d := range c.Durations {
		if d < 0 {
			return fmt.Errorf("keep-alive durations must be non-negative, got %d", d)
		}
	}
	if c.Window.WindowSize < 0 {
		return fmt.Errorf("window size must be non-negative, got %d", c.Window.WindowSize)
	}
	if c.Window.Start < 0 {
		return fmt.Errorf("start step must be non-negative, got %d", c.Window.Start)
	}
	if c.Window.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Window.Horizon)
	}
	if c.Memory.OldLimitMB < 0 || c.Memory.NewLimitMB < 0 {
		return fmt.Errorf("memory limits must be non-negative, got old=%g new=%g", c.Memory.OldLimitMB, c.Memory.NewLimitMB)
	}
	if c.Policy.Lambda < 0 || c.Policy.Lambda > 1 {
		return fmt.Errorf("lambda must be in [0,1], got %g", c.Policy.Lambda)
	}
	if !IsValidStrategy(c.Policy.Strategy) {
		return fmt.Errorf("unknown strategy %q", c.Policy.Strategy)
	}
	if !IsValidAdmissionPolicy(c.Policy.Admission) {
		return fmt.Errorf("unknown admission policy %q", c.Policy.Admission)
	}
	if !IsValidReplacementPolicy(string(c.Policy.Replacement)) {
		return fmt.Errorf("unknown replacement policy %q", c.Policy.Replacement)
	}
	if c.Firefly.PopulationSize <= 0 {
		return fmt.Errorf("firefly population size must be positive, got %d", c.Firefly.PopulationSize)
	}
	if c.Firefly.Alpha < 0 || c.Firefly.Beta < 0 || c.Firefly.Gamma < 0 {
		return fmt.Errorf("firefly coefficients must be non-negative, got %+v", c.Firefly)
	}
	if c.Swarm.PopulationSize <= 0 {
		return fmt.Errorf("swarm population size must be positive, got %d", c.Swarm.PopulationSize)
	}
	return nil
}
