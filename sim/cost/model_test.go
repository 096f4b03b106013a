package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepalive-sim/keepalive-sim/sim"
	"github.com/keepalive-sim/keepalive-sim/sim/internal/testutil"
)

var pair = sim.ServerPair{Old: "old", New: "new"}

func testModel() *Model {
	return NewModel(&Profile{
		Servers: []ServerProfile{
			{Name: "old", ExecPowerW: 3600, IdlePowerWPerGB: 3600, EmbodiedGrams: 0, LifetimeYears: 1, MemoryGB: 1, Cores: 1},
			{Name: "new", ExecPowerW: 1800, IdlePowerWPerGB: 1800, EmbodiedGrams: 365 * 24 * 3600, LifetimeYears: 1, MemoryGB: 2, Cores: 2},
		},
		Functions: []FunctionProfile{
			{Name: "fn", MemoryMB: 1024, Timings: map[string]Timing{
				"old": {Cold: 2, Warm: 1},
				"new": {Cold: 1, Warm: 0.5},
			}},
		},
	})
}

func TestModel_ServiceTimes(t *testing.T) {
	cold, warm, err := testModel().ServiceTimes(sim.Function{Name: "fn"}, "new")
	require.NoError(t, err)
	assert.Equal(t, 1.0, cold)
	assert.Equal(t, 0.5, warm)
}

func TestModel_ExecutionCarbon(t *testing.T) {
	// GIVEN old: 3600 W, no embodied carbon; new: 1800 W, 1 g/s embodied over 2 cores
	cold, warm, err := testModel().ExecutionCarbon(sim.Function{Name: "fn"}, pair, 1000)
	require.NoError(t, err)

	// THEN old cold (2s): 3600*2/3.6e6 kWh * 1000 g/kWh = 2 g
	assert.InDelta(t, 2.0, cold[sim.Old], 1e-9)
	assert.InDelta(t, 1.0, warm[sim.Old], 1e-9)
	// AND new cold (1s): 0.5 g operational + 0.5 g embodied per core
	assert.InDelta(t, 1.0, cold[sim.New], 1e-9)
	assert.InDelta(t, 0.5, warm[sim.New], 1e-9)
}

func TestModel_ExecutionCarbonMonotoneInIntensity(t *testing.T) {
	m := testModel()
	fn := sim.Function{Name: "fn"}
	prevCold, prevWarm, err := m.ExecutionCarbon(fn, pair, 0)
	require.NoError(t, err)
	for _, ci := range []float64{1, 50, 200, 800} {
		cold, warm, err := m.ExecutionCarbon(fn, pair, ci)
		require.NoError(t, err)
		for _, g := range sim.Generations {
			assert.GreaterOrEqual(t, cold[g], prevCold[g])
			assert.GreaterOrEqual(t, warm[g], prevWarm[g])
		}
		prevCold, prevWarm = cold, warm
	}
}

func TestModel_KeepAliveCarbon(t *testing.T) {
	m := testModel()
	fn := sim.Function{Name: "fn", MemoryMB: 1024}

	zero, err := m.KeepAliveCarbon(fn, "old", 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 0.0, zero, "zero duration costs nothing")

	// 1 GB at 3600 W/GB for 1 minute: 60 Wh = 0.06 kWh * 100 g/kWh = 6 g
	got, err := m.KeepAliveCarbon(fn, "old", 1, 100)
	require.NoError(t, err)
	testutil.AssertFloat64Equal(t, "keep-alive carbon", 6.0, got, 1e-9)

	prev := 0.0
	for minutes := 1.0; minutes <= 30; minutes++ {
		c, err := m.KeepAliveCarbon(fn, "new", minutes, 100)
		require.NoError(t, err)
		assert.Greater(t, c, prev, "non-decreasing in duration")
		prev = c
	}
}

func TestModel_ProfileMissing(t *testing.T) {
	m := testModel()
	_, _, err := m.ServiceTimes(sim.Function{Name: "unknown"}, "old")
	assert.ErrorIs(t, err, sim.ErrProfileMissing)

	_, _, err = m.ExecutionCarbon(sim.Function{Name: "fn"}, sim.ServerPair{Old: "old", New: "absent"}, 1)
	assert.ErrorIs(t, err, sim.ErrProfileMissing)

	_, err = m.KeepAliveCarbon(sim.Function{Name: "fn"}, "absent", 1, 1)
	assert.ErrorIs(t, err, sim.ErrProfileMissing)

	assert.True(t, m.Has("fn", pair))
	assert.False(t, m.Has("fn", sim.ServerPair{Old: "old", New: "absent"}))
}

func TestLoadProfile_Defaults(t *testing.T) {
	// GIVEN the shipped defaults.yaml
	p, err := LoadProfile(testutil.DefaultsPath(t))
	require.NoError(t, err)

	// THEN every function is profiled on the default server pair
	m := NewModel(p)
	defaults := sim.DefaultSimConfig()
	require.NotEmpty(t, p.Functions)
	for _, f := range p.Functions {
		assert.True(t, m.Has(f.Name, defaults.Servers), "function %s", f.Name)
		assert.Positive(t, f.MemoryMB)
	}
	_, ok := p.Function(p.Functions[0].Name)
	assert.True(t, ok)
}

func TestLoadProfile_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "servers:\n  - name: a\n    watts: 3\n", "parsing cost profile"},
		{"bad lifetime", "servers:\n  - {name: a, lifetime_years: 0, memory_gb: 1, cores: 1}\n", "must be positive"},
		{"duplicate server", "servers:\n  - {name: a, lifetime_years: 1, memory_gb: 1, cores: 1}\n  - {name: a, lifetime_years: 1, memory_gb: 1, cores: 1}\n", "duplicate server"},
		{"non-positive timing", "functions:\n  - name: f\n    timings:\n      a: {cold: 0, warm: 1}\n", "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, t.TempDir(), "profile.yaml", tt.yaml)
			_, err := LoadProfile(path)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
