package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/keepalive-sim/keepalive-sim/sim"
)

// Firefly searches (placement, keep-alive) positions with the firefly
// algorithm. One instance serves one function for the whole run: the
// population is created on the first Decide and then carried forward, mutated
// in place, so positions learned under earlier carbon conditions seed later
// searches.
//
// Brightness is the objective value itself. A firefly moves toward every
// firefly whose brightness exceeds its own.
type Firefly struct {
	ctx        sim.StrategyContext
	population []sim.Candidate
	brightness []float64
}

// NewFirefly validates ctx and returns an uninitialized optimizer.
func NewFirefly(ctx sim.StrategyContext) (*Firefly, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if ctx.Firefly.PopulationSize <= 0 {
		return nil, fmt.Errorf("firefly population size must be positive, got %d", ctx.Firefly.PopulationSize)
	}
	if ctx.RNG == nil {
		return nil, fmt.Errorf("firefly for %s: nil RNG", ctx.Function.Name)
	}
	return &Firefly{ctx: ctx}, nil
}

func (f *Firefly) Name() string { return sim.StrategyFirefly }

// Population returns a copy of the current positions (nil before the first Decide).
func (f *Firefly) Population() []sim.Candidate {
	if f.population == nil {
		return nil
	}
	return append([]sim.Candidate(nil), f.population...)
}

// Brightness returns a copy of the brightness values from the last Decide.
func (f *Firefly) Brightness() []float64 {
	if f.brightness == nil {
		return nil
	}
	return append([]float64(nil), f.brightness...)
}

// Decide evaluates every firefly under the current conditions, runs one
// attraction pass, and returns the discretized best position.
func (f *Firefly) Decide(_ int64, carbonIntensity float64, gaps []int) (sim.Decision, error) {
	obj, err := sim.NewObjective(f.ctx, carbonIntensity, gaps)
	if err != nil {
		return sim.Decision{}, err
	}
	if f.population == nil {
		f.initialize()
	}

	// Brightness from a previous step is never reused.
	for i := range f.population {
		f.brightness[i] = obj.Evaluate(f.population[i])
	}

	n := len(f.population)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if f.brightness[j] > f.brightness[i] {
				f.move(i, j)
			}
		}
	}

	best := 0
	bestFitness := math.Inf(1)
	for i, c := range f.population {
		f.brightness[i] = obj.Evaluate(c)
		if fit := obj.EvaluateDecision(sim.Discretize(c, f.ctx.Durations)); fit < bestFitness {
			best, bestFitness = i, fit
		}
	}
	return sim.Discretize(f.population[best], f.ctx.Durations), nil
}

func (f *Firefly) initialize() {
	rng := f.ctx.RNG
	n := f.ctx.Firefly.PopulationSize
	f.population = make([]sim.Candidate, n)
	f.brightness = make([]float64, n)
	for i := range f.population {
		f.population[i] = sim.Candidate{
			Placement: float64(rng.Intn(2)),
			Duration:  float64(f.ctx.Durations[rng.Intn(len(f.ctx.Durations))]),
		}
	}
}

// move pulls firefly i toward firefly j and adds a random step.
func (f *Firefly) move(i, j int) {
	p := f.ctx.Firefly
	xi := []float64{f.population[i].Placement, f.population[i].Duration}
	xj := []float64{f.population[j].Placement, f.population[j].Duration}
	r := floats.Distance(xi, xj, 2)
	attractiveness := p.Beta * math.Exp(-p.Gamma*r*r)
	for k := range xi {
		xi[k] += attractiveness*(xj[k]-xi[k]) + p.Alpha*(f.ctx.RNG.Float64()-0.5)
	}
	f.population[i] = sim.Candidate{Placement: xi[0], Duration: xi[1]}
}
