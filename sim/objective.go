package sim

import "math"

// Objective scores candidates for one function at one step:
//
//	lambda*E[service time] + (1-lambda)*E[carbon]
//
// where expectations weigh cold and warm outcomes by ColdWarmProbability at the
// candidate's keep-alive duration. Placement is clamped to [0,1] and used as
// an interpolation weight between the two generations, so continuous
// positions get a continuous score. Lower is better.
type Objective struct {
	Lambda  float64
	Gaps    []int
	Profile ExecutionProfile

	durations []int
	// keepAlive[g][k] is the carbon of keeping one instance warm on g for
	// durations[k]; nil unless keep-alive carbon is charged.
	keepAlive *[2][]float64
}

// NewObjective evaluates the cost model for ctx at the given intensity.
func NewObjective(ctx StrategyContext, carbonIntensity float64, gaps []int) (*Objective, error) {
	profile, err := NewExecutionProfile(ctx.Cost, ctx.Function, ctx.Servers, carbonIntensity)
	if err != nil {
		return nil, err
	}
	o := &Objective{
		Lambda:    ctx.Lambda,
		Gaps:      gaps,
		Profile:   profile,
		durations: ctx.Durations,
	}
	if ctx.IncludeKeepAlive {
		var table [2][]float64
		for _, g := range Generations {
			table[g] = make([]float64, len(ctx.Durations))
			for k, d := range ctx.Durations {
				c, err := ctx.Cost.KeepAliveCarbon(ctx.Function, ctx.Servers.Server(g), float64(d), carbonIntensity)
				if err != nil {
					return nil, err
				}
				table[g][k] = c
			}
		}
		o.keepAlive = &table
	}
	return o, nil
}

// Expected returns the probability-weighted service time and carbon of c.
func (o *Objective) Expected(c Candidate) Outcome {
	p := clamp(c.Placement, 0, 1)
	kat := o.clampDuration(c.Duration)
	cold, warm := ColdWarmProbability(o.Gaps, kat)

	st := cold*lerp(o.Profile.Cold[Old].ServiceTime, o.Profile.Cold[New].ServiceTime, p) +
		warm*lerp(o.Profile.Warm[Old].ServiceTime, o.Profile.Warm[New].ServiceTime, p)
	carbon := cold*lerp(o.Profile.Cold[Old].Carbon, o.Profile.Cold[New].Carbon, p) +
		warm*lerp(o.Profile.Warm[Old].Carbon, o.Profile.Warm[New].Carbon, p)
	if o.keepAlive != nil {
		carbon += lerp(o.keepAliveAt(Old, kat), o.keepAliveAt(New, kat), p)
	}
	return Outcome{ServiceTime: st, Carbon: carbon}
}

// Evaluate returns the weighted fitness of c.
func (o *Objective) Evaluate(c Candidate) float64 {
	return o.Expected(c).Score(o.Lambda)
}

// EvaluateDecision returns the fitness of an applied decision.
func (o *Objective) EvaluateDecision(d Decision) float64 {
	return o.Evaluate(Candidate{Placement: float64(d.Placement), Duration: float64(d.KeepAlive)})
}

func (o *Objective) clampDuration(d float64) float64 {
	if len(o.durations) == 0 {
		return math.Max(d, 0)
	}
	return clamp(d, float64(o.durations[0]), float64(o.durations[len(o.durations)-1]))
}

// keepAliveAt interpolates the keep-alive table between neighbouring durations.
func (o *Objective) keepAliveAt(g Generation, kat float64) float64 {
	table := o.keepAlive[g]
	ds := o.durations
	if len(ds) == 1 || kat <= float64(ds[0]) {
		return table[0]
	}
	for k := 1; k < len(ds); k++ {
		if kat <= float64(ds[k]) {
			lo, hi := float64(ds[k-1]), float64(ds[k])
			return lerp(table[k-1], table[k], (kat-lo)/(hi-lo))
		}
	}
	return table[len(table)-1]
}

func lerp(a, b, t float64) float64 {
	return (1-t)*a + t*b
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
