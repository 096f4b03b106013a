// register.go wires sim/optimizer constructors into the sim package's
// registration variable (NewStrategyFunc). This init() runs when any package
// imports sim/optimizer, breaking the import cycle between sim/ (interface
// owner) and sim/optimizer/ (implementation). Test code in package sim uses
// optimizer_import_test.go for the blank import.
package optimizer

import (
	"fmt"

	"github.com/keepalive-sim/keepalive-sim/sim"
)

func init() {
	sim.NewStrategyFunc = NewStrategy
}

// NewStrategy creates the named strategy for one function.
func NewStrategy(name string, ctx sim.StrategyContext) (sim.Strategy, error) {
	switch name {
	case "", sim.StrategyFirefly:
		return NewFirefly(ctx)
	case sim.StrategySwarm:
		return NewSwarm(ctx)
	case sim.StrategyPerformance:
		return NewGrid(sim.StrategyPerformance, 1, ctx)
	case sim.StrategyCarbon:
		return NewGrid(sim.StrategyCarbon, 0, ctx)
	case sim.StrategyOracle:
		return NewOracle(ctx)
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

func checkContext(ctx sim.StrategyContext) error {
	if ctx.Cost == nil {
		return fmt.Errorf("strategy for %s: nil cost model", ctx.Function.Name)
	}
	if len(ctx.Durations) == 0 {
		return fmt.Errorf("strategy for %s: empty keep-alive duration set", ctx.Function.Name)
	}
	return nil
}
