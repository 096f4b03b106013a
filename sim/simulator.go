// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/keepalive-sim/keepalive-sim/sim/trace"
)

// Simulator replays invocation traces minute by minute against the two warm
// pools, asking one Strategy per function for keep-alive decisions.
//
// All mutable state (pools, strategies, ledger) is owned here and mutated from
// a single goroutine. Within a step, functions are processed in ID order and
// new reservations are applied only after every function has decided, so each
// decision sees the pools as committed at the start of its own processing.
type Simulator struct {
	Config      SimConfig
	Functions   []Function
	Invocations [][]int   // per function, per step invocation counts
	Carbon      []float64 // carbon intensity per step
	Cost        CostModel
	Pools       [2]*WarmPool
	Ledger      *ResultLedger
	Metrics     *Metrics
	Trace       *trace.SimulationTrace // may be nil
	Clock       int64

	strategies map[int]Strategy
	rng        *PartitionedRNG
	admission  AdmissionPolicy
	staged     [2][]*Reservation
}

// NewSimulator validates inputs and builds a Simulator. Function IDs are
// reassigned to their index in functions. tr may be nil.
func NewSimulator(cfg SimConfig, functions []Function, invocations [][]int, carbon []float64, cost CostModel, tr *trace.SimulationTrace) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cost == nil {
		return nil, fmt.Errorf("cost model must not be nil")
	}
	if len(functions) != len(invocations) {
		return nil, fmt.Errorf("%d functions but %d invocation traces", len(functions), len(invocations))
	}
	end := cfg.Window.Start + cfg.Window.Horizon
	if int64(len(carbon)) < end {
		return nil, fmt.Errorf("carbon intensity covers %d steps, simulation needs %d", len(carbon), end)
	}
	for t, ci := range carbon {
		if ci < 0 {
			return nil, fmt.Errorf("carbon intensity at step %d is negative (%g)", t, ci)
		}
	}
	fns := make([]Function, len(functions))
	for i, fn := range functions {
		if int64(len(invocations[i])) < end {
			return nil, fmt.Errorf("trace of %s covers %d steps, simulation needs %d", fn.Name, len(invocations[i]), end)
		}
		if fn.MemoryMB < 0 {
			return nil, fmt.Errorf("function %s has negative memory %g", fn.Name, fn.MemoryMB)
		}
		fn.ID = i
		fns[i] = fn
	}
	cfg.Durations = NormalizeDurations(cfg.Durations)
	if cfg.Policy.Replacement == "" {
		cfg.Policy.Replacement = ReplaceOverwrite
	}

	return &Simulator{
		Config:      cfg,
		Functions:   fns,
		Invocations: invocations,
		Carbon:      carbon,
		Cost:        cost,
		Pools:       [2]*WarmPool{NewWarmPool(Old), NewWarmPool(New)},
		Ledger:      NewResultLedger(len(fns)),
		Metrics:     NewMetrics(),
		Trace:       tr,
		Clock:       cfg.Window.Start,
		strategies:  make(map[int]Strategy),
		rng:         NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		admission:   NewAdmissionPolicy(cfg.Policy.Admission),
	}, nil
}

// Run simulates every step of the configured window, then settles the
// reservations still live at the horizon.
func (s *Simulator) Run() error {
	start := s.Config.Window.Start
	end := start + s.Config.Window.Horizon
	logrus.Infof("[step %05d] Simulating %d functions over %d steps with strategy %q",
		start, len(s.Functions), s.Config.Window.Horizon, s.strategyName())
	for t := start; t < end; t++ {
		if err := s.Step(t); err != nil {
			return err
		}
	}
	if err := s.settleRemaining(end); err != nil {
		return err
	}
	logrus.Infof("[step %05d] Simulation ended: %d invocations, %d discarded reservations",
		end, s.Metrics.Invocations, s.Metrics.TotalDiscards())
	return nil
}

// Step processes one time step: expiry or execution plus decision for every
// function, then reservation installation and admission control.
func (s *Simulator) Step(clock int64) error {
	s.Clock = clock
	ci := s.Carbon[clock]
	stepInvocations := 0

	for i := range s.Functions {
		fn := s.Functions[i]
		count := s.Invocations[i][clock]
		if count == 0 {
			if err := s.expire(fn, clock); err != nil {
				return err
			}
			continue
		}
		stepInvocations += count
		if err := s.invoke(fn, count, clock, ci); err != nil {
			return err
		}
	}

	for _, g := range Generations {
		for _, r := range s.staged[g] {
			if err := s.replace(g, r, clock); err != nil {
				return err
			}
		}
		s.staged[g] = s.staged[g][:0]
	}

	discarded, err := s.admit(clock)
	if err != nil {
		return err
	}
	s.Metrics.EndStep(discarded)
	logrus.Debugf("[step %05d] ci=%.2f invocations=%d discarded=%d pools(old/new)=%d/%d",
		clock, ci, stepInvocations, discarded, s.Pools[Old].Len(), s.Pools[New].Len())
	return nil
}

// Strategy returns the strategy owned by a function, if it has been created.
func (s *Simulator) Strategy(functionID int) (Strategy, bool) {
	st, ok := s.strategies[functionID]
	return st, ok
}

// Gaps returns the inter-invocation gaps of the trailing window before clock.
func (s *Simulator) Gaps(functionID int, clock int64) []int {
	from := max(clock-int64(s.Config.Window.WindowSize), 0)
	return InterInvocationGaps(s.Invocations[functionID][from:clock])
}

func (s *Simulator) expire(fn Function, clock int64) error {
	for _, g := range Generations {
		if r, ok := s.Pools[g].Expire(fn.ID, clock); ok {
			if err := s.settle(g, r, r.End-r.Start, clock, "expired"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Simulator) invoke(fn Function, count int, clock int64, ci float64) error {
	// A reservation that ended before this step cannot serve it.
	if err := s.expire(fn, clock-1); err != nil {
		return err
	}
	profile, err := NewExecutionProfile(s.Cost, fn, s.Config.Servers, ci)
	if err != nil {
		return fmt.Errorf("function %s at step %d: %w", fn.Name, clock, err)
	}
	exec, err := Execute(fn, count, clock, s.Pools, profile, s.Config.Policy.Lambda)
	if err != nil {
		return err
	}
	s.Ledger.Record(fn.ID, clock, exec.ServiceTime, exec.Carbon)
	s.Metrics.RecordExecution(exec)
	s.Trace.RecordExecution(trace.ExecutionRecord{
		Function: fn.Name, Clock: clock, Count: count,
		WarmStarts: exec.WarmStarts(), ColdStarts: exec.ColdStarts(),
		ServiceTime: exec.ServiceTime, Carbon: exec.Carbon,
	})
	for _, used := range exec.Consumed {
		r := used.Reservation
		if err := s.settle(used.Generation, r, r.Lifetime(clock), clock, "consumed"); err != nil {
			return err
		}
	}

	strategy, err := s.strategyFor(fn)
	if err != nil {
		return err
	}
	gaps := s.Gaps(fn.ID, clock)
	decision, err := strategy.Decide(clock, ci, gaps)
	if err != nil {
		return fmt.Errorf("strategy %s for %s at step %d: %w", strategy.Name(), fn.Name, clock, err)
	}
	s.Metrics.RecordDecision(decision)
	if s.Trace.Enabled() {
		record := trace.DecisionRecord{
			Function: fn.Name, Clock: clock, Strategy: strategy.Name(),
			Generation: decision.Placement.String(), KeepAlive: decision.KeepAlive,
		}
		if obj, err := NewObjective(s.strategyContext(fn), ci, gaps); err == nil {
			record.Fitness = obj.EvaluateDecision(decision)
		} else {
			logrus.Debugf("[step %05d] no fitness for traced decision of %s: %v", clock, fn.Name, err)
		}
		s.Trace.RecordDecision(record)
	}

	if decision.KeepAlive > 0 {
		s.staged[decision.Placement] = append(s.staged[decision.Placement], &Reservation{
			FunctionID: fn.ID,
			Instances:  count,
			Start:      clock,
			End:        clock + int64(decision.KeepAlive),
			InvokeTime: clock,
		})
	}
	return nil
}

// replace installs r in pool g. Whatever the function already held there is
// resolved by the configured ReplacementPolicy.
func (s *Simulator) replace(g Generation, r *Reservation, clock int64) error {
	old := s.Pools[g].Reserve(r)
	if old == nil {
		return nil
	}
	switch s.Config.Policy.Replacement {
	case ReplaceSettle:
		return s.settle(g, old, old.Lifetime(clock), clock, "replaced")
	default:
		logrus.Debugf("[step %05d] reservation of %s on %s replaced without settlement",
			clock, s.Functions[old.FunctionID].Name, g)
		return nil
	}
}

func (s *Simulator) admit(clock int64) (int, error) {
	memory := func(id int) float64 { return s.Functions[id].MemoryMB }
	discarded := 0
	for _, g := range Generations {
		pool := s.Pools[g]
		limit := s.Config.Memory.Limit(g)
		before := pool.Footprint(memory)
		evicted := s.admission.Admit(pool, memory, limit)
		for _, r := range evicted {
			s.Trace.RecordAdmission(trace.AdmissionRecord{
				Function: s.Functions[r.FunctionID].Name, Clock: clock,
				Generation: g.String(), FootprintMB: before, LimitMB: limit,
			})
			if err := s.settle(g, r, r.Lifetime(clock), clock, "evicted"); err != nil {
				return discarded, err
			}
		}
		after := pool.Footprint(memory)
		if after > limit {
			panic(fmt.Sprintf("admission policy left %s pool at %.1f MB over its %.1f MB limit", g, after, limit))
		}
		if len(evicted) > 0 {
			logrus.Debugf("[step %05d] %s pool over limit (%.1f > %.1f MB): discarded %d reservations",
				clock, g, before, limit, len(evicted))
		}
		s.Metrics.RecordAdmission(g, len(evicted), after)
		discarded += len(evicted)
	}
	return discarded, nil
}

// settle charges a reservation's keep-alive carbon over lifetime steps at the
// carbon intensity of its start step, crediting the originating invocation.
func (s *Simulator) settle(g Generation, r *Reservation, lifetime, clock int64, reason string) error {
	fn := s.Functions[r.FunctionID]
	perInstance, err := s.Cost.KeepAliveCarbon(fn, s.Config.Servers.Server(g), float64(lifetime), s.Carbon[r.Start])
	if err != nil {
		return fmt.Errorf("settling keep-alive of %s: %w", fn.Name, err)
	}
	carbon := float64(r.Instances) * perInstance
	s.Ledger.AddCarbon(r.FunctionID, r.InvokeTime, carbon)
	s.Metrics.RecordKeepAlive(g, carbon)
	s.Trace.RecordSettlement(trace.SettlementRecord{
		Function: fn.Name, Clock: clock, Generation: g.String(), InvokeTime: r.InvokeTime,
		Lifetime: lifetime, Carbon: carbon, Reason: reason,
	})
	return nil
}

func (s *Simulator) settleRemaining(end int64) error {
	for _, g := range Generations {
		for _, r := range s.Pools[g].Reservations() {
			s.Pools[g].Remove(r.FunctionID)
			if err := s.settle(g, r, r.Lifetime(end), end, "horizon"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Simulator) strategyFor(fn Function) (Strategy, error) {
	if st, ok := s.strategies[fn.ID]; ok {
		return st, nil
	}
	st, err := NewStrategy(s.strategyName(), s.strategyContext(fn))
	if err != nil {
		return nil, fmt.Errorf("creating strategy for %s: %w", fn.Name, err)
	}
	s.strategies[fn.ID] = st
	return st, nil
}

func (s *Simulator) strategyContext(fn Function) StrategyContext {
	return StrategyContext{
		Function:         fn,
		Servers:          s.Config.Servers,
		Cost:             s.Cost,
		Durations:        s.Config.Durations,
		Lambda:           s.Config.Policy.Lambda,
		IncludeKeepAlive: s.Config.Policy.IncludeKeepAlive,
		Firefly:          s.Config.Firefly,
		Swarm:            s.Config.Swarm,
		RNG:              s.rng.ForSubsystem(SubsystemFunction(fn.ID)),
		Invocations:      s.Invocations[fn.ID],
	}
}

func (s *Simulator) strategyName() string {
	if s.Config.Policy.Strategy == "" {
		return StrategyFirefly
	}
	return s.Config.Policy.Strategy
}
