package sim

import (
	"fmt"
	"sort"
)

// Reservation keeps Instances idle instances of one function warm from Start
// until End (exclusive of reuse after End). InvokeTime is the step whose
// invocation created it; its keep-alive carbon is credited there.
type Reservation struct {
	FunctionID int
	Instances  int
	Start      int64
	End        int64
	InvokeTime int64
}

// Lifetime returns how long the reservation has been held at clock,
// capped at its scheduled end.
func (r *Reservation) Lifetime(clock int64) int64 {
	return max(min(clock, r.End)-r.Start, 0)
}

// Live reports whether the reserved instances can still serve at clock.
func (r *Reservation) Live(clock int64) bool {
	return r.End >= clock
}

// WarmPool holds at most one reservation per function for one generation.
// NOT thread-safe; owned by the Simulator.
type WarmPool struct {
	Generation   Generation
	reservations map[int]*Reservation
}

// NewWarmPool creates an empty pool for generation g.
func NewWarmPool(g Generation) *WarmPool {
	return &WarmPool{
		Generation:   g,
		reservations: make(map[int]*Reservation),
	}
}

// Get returns the active reservation for functionID, if any.
func (p *WarmPool) Get(functionID int) (*Reservation, bool) {
	r, ok := p.reservations[functionID]
	return r, ok
}

// Reserve installs r, replacing any reservation the function already holds
// in this pool. The replaced reservation is returned so the caller can decide
// how to account for it.
func (p *WarmPool) Reserve(r *Reservation) (replaced *Reservation) {
	if r == nil {
		panic("WarmPool.Reserve: nil reservation")
	}
	if r.End < r.Start {
		panic(fmt.Sprintf("WarmPool.Reserve: reservation ends (%d) before it starts (%d)", r.End, r.Start))
	}
	replaced = p.reservations[r.FunctionID]
	p.reservations[r.FunctionID] = r
	return replaced
}

// Expire removes and returns the function's reservation if it has ended by clock.
func (p *WarmPool) Expire(functionID int, clock int64) (*Reservation, bool) {
	r, ok := p.reservations[functionID]
	if !ok || r.End > clock {
		return nil, false
	}
	delete(p.reservations, functionID)
	return r, true
}

// Remove deletes and returns the function's reservation regardless of its end time.
func (p *WarmPool) Remove(functionID int) (*Reservation, bool) {
	r, ok := p.reservations[functionID]
	if ok {
		delete(p.reservations, functionID)
	}
	return r, ok
}

// Len returns the number of active reservations.
func (p *WarmPool) Len() int {
	return len(p.reservations)
}

// IDs returns the function IDs with active reservations in ascending order.
func (p *WarmPool) IDs() []int {
	ids := make([]int, 0, len(p.reservations))
	for id := range p.reservations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Reservations returns the active reservations ordered by function ID.
func (p *WarmPool) Reservations() []*Reservation {
	out := make([]*Reservation, 0, len(p.reservations))
	for _, id := range p.IDs() {
		out = append(out, p.reservations[id])
	}
	return out
}

// Footprint sums Instances * memoryMB(functionID) over active reservations.
func (p *WarmPool) Footprint(memoryMB func(functionID int) float64) float64 {
	total := 0.0
	for _, id := range p.IDs() {
		r := p.reservations[id]
		total += float64(r.Instances) * memoryMB(id)
	}
	return total
}
