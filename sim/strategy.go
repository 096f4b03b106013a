package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Candidate is a continuous optimizer position: a placement coordinate
// (0 = Old, 1 = New) and a keep-alive duration in minutes. Movement may take
// either coordinate off its discrete domain; Discretize maps it back.
type Candidate struct {
	Placement float64
	Duration  float64
}

// Decision is an applied policy: where future instances are kept warm and for
// how many minutes. KeepAlive 0 means no reservation.
type Decision struct {
	Placement Generation
	KeepAlive int
}

// Discretize rounds placement to the nearest generation and snaps duration to
// the nearest member of durations (ascending, non-empty), preferring the
// smaller member on ties.
func Discretize(c Candidate, durations []int) Decision {
	d := Decision{Placement: Old}
	if !math.IsNaN(c.Placement) && c.Placement >= 0.5 {
		d.Placement = New
	}
	if len(durations) == 0 {
		return d
	}
	lo, hi := float64(durations[0]), float64(durations[len(durations)-1])
	target := c.Duration
	if math.IsNaN(target) {
		target = lo
	}
	target = math.Max(lo, math.Min(hi, target))
	best := durations[0]
	for _, v := range durations[1:] {
		if math.Abs(float64(v)-target) < math.Abs(float64(best)-target) {
			best = v
		}
	}
	d.KeepAlive = best
	return d
}

// NormalizeDurations returns the sorted, de-duplicated duration set.
func NormalizeDurations(durations []int) []int {
	out := append([]int(nil), durations...)
	sort.Ints(out)
	j := 0
	for i, v := range out {
		if i == 0 || v != out[j-1] {
			out[j] = v
			j++
		}
	}
	return out[:j]
}

// Strategy picks a keep-alive decision for one function. The Simulator keeps
// one Strategy per function, created on its first invocation, so
// implementations may carry state across calls.
type Strategy interface {
	Name() string
	// Decide is called once per step in which the function is invoked.
	// gaps are the inter-invocation gaps of the trailing window.
	Decide(clock int64, carbonIntensity float64, gaps []int) (Decision, error)
}

// StrategyContext carries everything a strategy constructor may need.
type StrategyContext struct {
	Function         Function
	Servers          ServerPair
	Cost             CostModel
	Durations        []int   // ascending, non-empty
	Lambda           float64 // service-time weight; carbon weight is 1-Lambda
	IncludeKeepAlive bool    // add expected keep-alive carbon to the objective
	Firefly          FireflyConfig
	Swarm            SwarmConfig
	RNG              *rand.Rand
	// Invocations is the function's full trace row. Only the oracle reads
	// beyond the current step.
	Invocations []int
}

// Strategy names.
const (
	StrategyFirefly     = "firefly"
	StrategySwarm       = "swarm"
	StrategyPerformance = "performance"
	StrategyCarbon      = "carbon"
	StrategyOracle      = "oracle"
)

// ValidStrategies is the set of recognized strategy names.
var ValidStrategies = map[string]bool{
	"":                  true,
	StrategyFirefly:     true,
	StrategySwarm:       true,
	StrategyPerformance: true,
	StrategyCarbon:      true,
	StrategyOracle:      true,
}

// IsValidStrategy reports whether name is a recognized strategy.
func IsValidStrategy(name string) bool {
	return ValidStrategies[name]
}

// NewStrategyFunc constructs a strategy by name. It is set by sim/optimizer's
// init(); importing that package (directly or blank) is required.
var NewStrategyFunc func(name string, ctx StrategyContext) (Strategy, error)

// NewStrategy creates a strategy by name through the registered constructor.
func NewStrategy(name string, ctx StrategyContext) (Strategy, error) {
	if !IsValidStrategy(name) {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	if NewStrategyFunc == nil {
		panic("sim.NewStrategyFunc not registered: import sim/optimizer")
	}
	return NewStrategyFunc(name, ctx)
}
