package optimizer

import (
	"math"

	"github.com/keepalive-sim/keepalive-sim/sim"
)

// Oracle knows when the function is invoked next. For each decision it
// computes the realized cost of that next invocation: warm on the chosen
// generation plus the keep-alive held until then if the gap fits, otherwise a
// cold start plus the full keep-alive. It is the lower bound the online
// strategies are compared against.
type Oracle struct {
	ctx sim.StrategyContext
}

// NewOracle returns an oracle strategy; ctx.Invocations must hold the full trace row.
func NewOracle(ctx sim.StrategyContext) (*Oracle, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return &Oracle{ctx: ctx}, nil
}

func (o *Oracle) Name() string { return sim.StrategyOracle }

// NextGap returns the steps until the next invocation after clock, or false
// if the trace has none.
func (o *Oracle) NextGap(clock int64) (int64, bool) {
	for t := clock + 1; t < int64(len(o.ctx.Invocations)); t++ {
		if o.ctx.Invocations[t] > 0 {
			return t - clock, true
		}
	}
	return 0, false
}

func (o *Oracle) Decide(clock int64, carbonIntensity float64, _ []int) (sim.Decision, error) {
	profile, err := sim.NewExecutionProfile(o.ctx.Cost, o.ctx.Function, o.ctx.Servers, carbonIntensity)
	if err != nil {
		return sim.Decision{}, err
	}
	lambda := o.ctx.Lambda
	cold := profile.Cold[sim.Old]
	if profile.Cold[sim.New].Score(lambda) < cold.Score(lambda) {
		cold = profile.Cold[sim.New]
	}
	gap, hasNext := o.NextGap(clock)

	var best sim.Decision
	bestScore := math.Inf(1)
	for _, gen := range sim.Generations {
		for _, d := range o.ctx.Durations {
			outcome := cold
			held := float64(d)
			if hasNext && d > 0 && gap <= int64(d) {
				outcome = profile.Warm[gen]
				held = float64(gap)
			}
			ka, err := o.ctx.Cost.KeepAliveCarbon(o.ctx.Function, o.ctx.Servers.Server(gen), held, carbonIntensity)
			if err != nil {
				return sim.Decision{}, err
			}
			outcome.Carbon += ka
			decision := sim.Decision{Placement: gen, KeepAlive: d}
			if score := outcome.Score(lambda); score < bestScore {
				best, bestScore = decision, score
			}
		}
	}
	return best, nil
}
