package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile(t *testing.T, cm CostModel, ci float64) ExecutionProfile {
	t.Helper()
	p, err := NewExecutionProfile(cm, Function{Name: "f0"}, testServers, ci)
	require.NoError(t, err)
	return p
}

func TestExecute_ColdWhenPoolsEmpty(t *testing.T) {
	fn := Function{ID: 0, Name: "f0"}
	pools := [2]*WarmPool{NewWarmPool(Old), NewWarmPool(New)}
	profile := testProfile(t, newFakeCost(), 10)

	tests := []struct {
		name    string
		lambda  float64
		wantGen Generation
		wantST  float64
		wantC   float64
	}{
		// New: cold 1s / 30g; Old: cold 2s / 10g.
		{"service time only picks the faster generation", 1, New, 3, 90},
		{"carbon only picks the cleaner generation", 0, Old, 6, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, err := Execute(fn, 3, 0, pools, profile, tt.lambda)
			require.NoError(t, err)
			assert.Equal(t, 3, exec.Cold[tt.wantGen])
			assert.Equal(t, 0, exec.WarmStarts())
			assert.InDelta(t, tt.wantST, exec.ServiceTime, 1e-12)
			assert.InDelta(t, tt.wantC, exec.Carbon, 1e-12)
			assert.Empty(t, exec.Consumed)
		})
	}
}

func TestExecute_WarmInstancesServeFirstRemainderCold(t *testing.T) {
	// GIVEN a live reservation of 2 instances on Old
	fn := Function{ID: 0, Name: "f0"}
	pools := [2]*WarmPool{NewWarmPool(Old), NewWarmPool(New)}
	r := &Reservation{FunctionID: 0, Instances: 2, Start: 0, End: 5}
	pools[Old].Reserve(r)
	profile := testProfile(t, newFakeCost(), 10)

	// WHEN 3 invocations arrive at t=4 with lambda=1
	exec, err := Execute(fn, 3, 4, pools, profile, 1)
	require.NoError(t, err)

	// THEN 2 are warm on Old, 1 is cold on the fastest generation, and the reservation is consumed
	assert.Equal(t, 2, exec.Warm[Old])
	assert.Equal(t, 1, exec.Cold[New])
	assert.InDelta(t, 2*0.5+1, exec.ServiceTime, 1e-12)
	assert.InDelta(t, 2*2+30.0, exec.Carbon, 1e-12)
	require.Len(t, exec.Consumed, 1)
	assert.Same(t, r, exec.Consumed[0].Reservation)
	assert.Equal(t, 0, pools[Old].Len())
}

func TestExecute_PrefersBetterWarmGeneration(t *testing.T) {
	fn := Function{ID: 0, Name: "f0"}
	pools := [2]*WarmPool{NewWarmPool(Old), NewWarmPool(New)}
	pools[Old].Reserve(&Reservation{FunctionID: 0, Instances: 1, End: 9})
	pools[New].Reserve(&Reservation{FunctionID: 0, Instances: 1, End: 9})
	profile := testProfile(t, newFakeCost(), 10)

	// lambda=1: New is the faster warm generation; one invocation uses only it.
	exec, err := Execute(fn, 1, 1, pools, profile, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, exec.Warm[New])
	assert.Equal(t, 1, pools[Old].Len(), "the other pool is untouched")
	assert.Equal(t, 0, pools[New].Len())
}

func TestExecute_ExpiredReservationIsNotUsed(t *testing.T) {
	fn := Function{ID: 0, Name: "f0"}
	pools := [2]*WarmPool{NewWarmPool(Old), NewWarmPool(New)}
	pools[Old].Reserve(&Reservation{FunctionID: 0, Instances: 1, End: 3})

	exec, err := Execute(fn, 1, 4, pools, testProfile(t, newFakeCost(), 10), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, exec.ColdStarts())
	assert.Equal(t, 1, pools[Old].Len(), "stale reservations are left for expiry")
}

func TestExecute_NonPositiveCostIsInvariantViolation(t *testing.T) {
	// GIVEN a cost model that returns zero carbon at zero intensity
	fn := Function{ID: 0, Name: "f0"}
	pools := [2]*WarmPool{NewWarmPool(Old), NewWarmPool(New)}
	profile := testProfile(t, newFakeCost(), 0)

	// WHEN executing
	_, err := Execute(fn, 1, 7, pools, profile, 0.5)

	// THEN the run must stop with an InvariantViolation
	var iv *InvariantViolation
	require.True(t, errors.As(err, &iv))
	assert.Equal(t, int64(7), iv.Clock)
	assert.Equal(t, "f0", iv.Function)
	assert.Contains(t, err.Error(), "must be positive")
}
