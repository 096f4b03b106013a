package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarmPool_ReserveReplacesAndReturnsPrevious(t *testing.T) {
	// GIVEN a pool holding a reservation for function 3
	p := NewWarmPool(Old)
	first := &Reservation{FunctionID: 3, Instances: 1, Start: 0, End: 5}
	assert.Nil(t, p.Reserve(first))

	// WHEN a second reservation for the same function is installed
	second := &Reservation{FunctionID: 3, Instances: 2, Start: 2, End: 4}
	replaced := p.Reserve(second)

	// THEN the pool keeps exactly one reservation, the new one
	assert.Same(t, first, replaced)
	assert.Equal(t, 1, p.Len())
	got, ok := p.Get(3)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestWarmPool_ReserveRejectsInvalid(t *testing.T) {
	p := NewWarmPool(New)
	assert.Panics(t, func() { p.Reserve(nil) })
	assert.Panics(t, func() { p.Reserve(&Reservation{Start: 5, End: 4}) })
}

func TestWarmPool_ExpireAtEndTime(t *testing.T) {
	p := NewWarmPool(Old)
	p.Reserve(&Reservation{FunctionID: 1, Instances: 1, Start: 2, End: 6})

	_, ok := p.Expire(1, 5)
	assert.False(t, ok, "reservation must survive before its end")
	assert.Equal(t, 1, p.Len())

	r, ok := p.Expire(1, 6)
	assert.True(t, ok, "reservation expires when clock reaches end")
	assert.Equal(t, int64(6), r.End)
	assert.Equal(t, 0, p.Len())

	_, ok = p.Expire(1, 10)
	assert.False(t, ok, "nothing left to expire")
}

func TestReservation_LifetimeAndLive(t *testing.T) {
	r := &Reservation{Start: 2, End: 6}
	assert.Equal(t, int64(0), r.Lifetime(1))
	assert.Equal(t, int64(2), r.Lifetime(4))
	assert.Equal(t, int64(4), r.Lifetime(6))
	assert.Equal(t, int64(4), r.Lifetime(9), "lifetime is capped at end")
	assert.True(t, r.Live(6))
	assert.False(t, r.Live(7))
}

func TestWarmPool_FootprintAndOrdering(t *testing.T) {
	p := NewWarmPool(New)
	p.Reserve(&Reservation{FunctionID: 4, Instances: 2, End: 1})
	p.Reserve(&Reservation{FunctionID: 1, Instances: 3, End: 1})
	memory := map[int]float64{1: 100, 4: 50}

	assert.Equal(t, 400.0, p.Footprint(func(id int) float64 { return memory[id] }))
	assert.Equal(t, []int{1, 4}, p.IDs())
	rs := p.Reservations()
	require.Len(t, rs, 2)
	assert.Equal(t, 1, rs[0].FunctionID)

	_, ok := p.Remove(1)
	assert.True(t, ok)
	_, ok = p.Remove(1)
	assert.False(t, ok)
}
