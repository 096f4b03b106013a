package optimizer

import (
	"math"

	"github.com/keepalive-sim/keepalive-sim/sim"
)

// Grid scores every (generation, duration) decision and returns the lowest.
// With lambda fixed to 1 it is the performance-only baseline, with 0 the
// carbon-only baseline. Ties keep the earlier decision (Old before New,
// shorter keep-alive first).
type Grid struct {
	name string
	ctx  sim.StrategyContext
}

// NewGrid returns an exhaustive strategy that ignores ctx.Lambda in favour of lambda.
func NewGrid(name string, lambda float64, ctx sim.StrategyContext) (*Grid, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	ctx.Lambda = lambda
	return &Grid{name: name, ctx: ctx}, nil
}

func (g *Grid) Name() string { return g.name }

func (g *Grid) Decide(_ int64, carbonIntensity float64, gaps []int) (sim.Decision, error) {
	obj, err := sim.NewObjective(g.ctx, carbonIntensity, gaps)
	if err != nil {
		return sim.Decision{}, err
	}
	var best sim.Decision
	bestScore := math.Inf(1)
	for _, gen := range sim.Generations {
		for _, d := range g.ctx.Durations {
			decision := sim.Decision{Placement: gen, KeepAlive: d}
			if score := obj.EvaluateDecision(decision); score < bestScore {
				best, bestScore = decision, score
			}
		}
	}
	return best, nil
}
