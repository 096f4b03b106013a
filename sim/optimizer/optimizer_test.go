package optimizer

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepalive-sim/keepalive-sim/sim"
)

var servers = sim.ServerPair{Old: "old", New: "new"}

// linearCost: Old is slow and clean, New is fast and dirty.
type linearCost struct{}

func (linearCost) ServiceTimes(_ sim.Function, server string) (float64, float64, error) {
	switch server {
	case "old":
		return 2, 0.5, nil
	case "new":
		return 1, 0.25, nil
	}
	return 0, 0, fmt.Errorf("server %q: %w", server, sim.ErrProfileMissing)
}

func (linearCost) ExecutionCarbon(_ sim.Function, _ sim.ServerPair, ci float64) (cold, warm [2]float64, err error) {
	return [2]float64{1 * ci, 3 * ci}, [2]float64{0.2 * ci, 0.6 * ci}, nil
}

func (linearCost) KeepAliveCarbon(_ sim.Function, server string, minutes, ci float64) (float64, error) {
	if server == "new" {
		return 0.03 * minutes * ci, nil
	}
	return 0.01 * minutes * ci, nil
}

func testContext(lambda float64, seed int64) sim.StrategyContext {
	cfg := sim.DefaultSimConfig()
	return sim.StrategyContext{
		Function:  sim.Function{Name: "fn", MemoryMB: 128},
		Servers:   servers,
		Cost:      linearCost{},
		Durations: []int{0, 1, 2, 5, 10},
		Lambda:    lambda,
		Firefly:   cfg.Firefly,
		Swarm:     cfg.Swarm,
		RNG:       rand.New(rand.NewSource(seed)),
	}
}

func TestNewStrategy_Names(t *testing.T) {
	ctx := testContext(0.5, 1)
	for _, name := range []string{sim.StrategyFirefly, sim.StrategySwarm, sim.StrategyPerformance, sim.StrategyCarbon, sim.StrategyOracle} {
		st, err := NewStrategy(name, ctx)
		require.NoError(t, err)
		assert.Equal(t, name, st.Name())
	}
	_, err := NewStrategy("tabu", ctx)
	assert.Error(t, err)
	assert.NotNil(t, sim.NewStrategyFunc, "init registers the constructor")
}

func TestNewStrategy_InvalidContext(t *testing.T) {
	ctx := testContext(0.5, 1)
	ctx.Cost = nil
	_, err := NewFirefly(ctx)
	assert.ErrorContains(t, err, "nil cost model")

	ctx = testContext(0.5, 1)
	ctx.Durations = nil
	_, err = NewGrid(sim.StrategyCarbon, 0, ctx)
	assert.ErrorContains(t, err, "empty keep-alive duration set")

	ctx = testContext(0.5, 1)
	ctx.RNG = nil
	_, err = NewSwarm(ctx)
	assert.ErrorContains(t, err, "nil RNG")

	ctx = testContext(0.5, 1)
	ctx.Firefly.PopulationSize = 0
	_, err = NewFirefly(ctx)
	assert.ErrorContains(t, err, "population size")
}
