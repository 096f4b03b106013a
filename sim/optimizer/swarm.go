package optimizer

import (
	"fmt"
	"math"

	"github.com/keepalive-sim/keepalive-sim/sim"
)

// Swarm is a particle swarm over (placement, keep-alive) positions. Like
// Firefly it is created per function and persists across steps; personal
// bests are re-scored every call because the objective changes with carbon
// intensity and invocation history.
type Swarm struct {
	ctx       sim.StrategyContext
	position  []sim.Candidate
	velocity  []sim.Candidate
	best      []sim.Candidate
	bestScore []float64
}

// NewSwarm validates ctx and returns an uninitialized swarm.
func NewSwarm(ctx sim.StrategyContext) (*Swarm, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if ctx.Swarm.PopulationSize <= 0 {
		return nil, fmt.Errorf("swarm population size must be positive, got %d", ctx.Swarm.PopulationSize)
	}
	if ctx.RNG == nil {
		return nil, fmt.Errorf("swarm for %s: nil RNG", ctx.Function.Name)
	}
	return &Swarm{ctx: ctx}, nil
}

func (s *Swarm) Name() string { return sim.StrategySwarm }

// Particles returns a copy of the current positions.
func (s *Swarm) Particles() []sim.Candidate {
	return append([]sim.Candidate(nil), s.position...)
}

// Decide runs one velocity update and returns the discretized swarm best.
func (s *Swarm) Decide(_ int64, carbonIntensity float64, gaps []int) (sim.Decision, error) {
	obj, err := sim.NewObjective(s.ctx, carbonIntensity, gaps)
	if err != nil {
		return sim.Decision{}, err
	}
	if s.position == nil {
		s.initialize()
	}
	for i := range s.best {
		s.bestScore[i] = obj.Evaluate(s.best[i])
	}
	s.observe(obj)

	global := s.globalBest()
	p := s.ctx.Swarm
	lo, hi := s.durationRange()
	for i := range s.position {
		r1, r2 := s.ctx.RNG.Float64(), s.ctx.RNG.Float64()
		v := &s.velocity[i]
		x := &s.position[i]
		v.Placement = p.Inertia*v.Placement + p.Cognitive*r1*(s.best[i].Placement-x.Placement) + p.Social*r2*(global.Placement-x.Placement)
		v.Duration = p.Inertia*v.Duration + p.Cognitive*r1*(s.best[i].Duration-x.Duration) + p.Social*r2*(global.Duration-x.Duration)
		v.Placement = bound(v.Placement, -1, 1)
		v.Duration = bound(v.Duration, -(hi - lo), hi-lo)
		x.Placement = bound(x.Placement+v.Placement, 0, 1)
		x.Duration = bound(x.Duration+v.Duration, lo, hi)
	}
	s.observe(obj)
	return sim.Discretize(s.globalBest(), s.ctx.Durations), nil
}

func (s *Swarm) initialize() {
	rng := s.ctx.RNG
	n := s.ctx.Swarm.PopulationSize
	s.position = make([]sim.Candidate, n)
	s.velocity = make([]sim.Candidate, n)
	s.best = make([]sim.Candidate, n)
	s.bestScore = make([]float64, n)
	for i := range s.position {
		s.position[i] = sim.Candidate{
			Placement: float64(rng.Intn(2)),
			Duration:  float64(s.ctx.Durations[rng.Intn(len(s.ctx.Durations))]),
		}
		s.best[i] = s.position[i]
		s.bestScore[i] = math.Inf(1)
	}
}

// observe scores current positions and updates personal bests.
func (s *Swarm) observe(obj *sim.Objective) {
	for i, x := range s.position {
		if score := obj.Evaluate(x); score < s.bestScore[i] {
			s.best[i], s.bestScore[i] = x, score
		}
	}
}

func (s *Swarm) globalBest() sim.Candidate {
	best := 0
	for i := range s.bestScore {
		if s.bestScore[i] < s.bestScore[best] {
			best = i
		}
	}
	return s.best[best]
}

func (s *Swarm) durationRange() (float64, float64) {
	d := s.ctx.Durations
	return float64(d[0]), float64(d[len(d)-1])
}

func bound(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
