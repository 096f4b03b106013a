package sim

import (
	"fmt"
	"sort"
)

// AdmissionPolicy keeps a warm pool within its memory limit. Admit removes
// reservations from pool until its footprint is at most limitMB and returns
// the evicted ones in eviction order. It never fails; over-capacity is an
// expected steady-state condition.
type AdmissionPolicy interface {
	Admit(pool *WarmPool, memoryMB func(functionID int) float64, limitMB float64) []*Reservation
}

// Admission policy names.
const (
	AdmissionNewestFirst  = "newest-first"
	AdmissionOldestFirst  = "oldest-first"
	AdmissionLargestFirst = "largest-first"
)

// ValidAdmissionPolicies is the set of recognized admission policy names.
// Shared by SimConfig.Validate(), PolicyBundle.Validate() and NewAdmissionPolicy().
var ValidAdmissionPolicies = map[string]bool{"": true, AdmissionNewestFirst: true, AdmissionOldestFirst: true, AdmissionLargestFirst: true}

// IsValidAdmissionPolicy reports whether name is a recognized admission policy.
func IsValidAdmissionPolicy(name string) bool {
	return ValidAdmissionPolicies[name]
}

// evictionOrder admits by discarding reservations in the order given by less
// (first element goes first) until the pool fits.
type evictionOrder struct {
	less func(a, b *Reservation, memoryMB func(int) float64) bool
}

func (e *evictionOrder) Admit(pool *WarmPool, memoryMB func(int) float64, limitMB float64) []*Reservation {
	footprint := pool.Footprint(memoryMB)
	if footprint <= limitMB {
		return nil
	}
	candidates := pool.Reservations()
	sort.SliceStable(candidates, func(i, j int) bool {
		return e.less(candidates[i], candidates[j], memoryMB)
	})
	var evicted []*Reservation
	for _, r := range candidates {
		if footprint <= limitMB {
			break
		}
		pool.Remove(r.FunctionID)
		footprint -= float64(r.Instances) * memoryMB(r.FunctionID)
		evicted = append(evicted, r)
	}
	return evicted
}

// NewestFirst discards the most recently started reservations first, so the
// current step's new reservations are deferred before older ones are dropped.
// Ties go to the higher function ID.
func NewestFirst() AdmissionPolicy {
	return &evictionOrder{less: func(a, b *Reservation, _ func(int) float64) bool {
		if a.Start != b.Start {
			return a.Start > b.Start
		}
		return a.FunctionID > b.FunctionID
	}}
}

// OldestFirst discards the longest-held reservations first.
func OldestFirst() AdmissionPolicy {
	return &evictionOrder{less: func(a, b *Reservation, _ func(int) float64) bool {
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.FunctionID < b.FunctionID
	}}
}

// LargestFirst discards the reservations with the largest footprint first.
func LargestFirst() AdmissionPolicy {
	return &evictionOrder{less: func(a, b *Reservation, memoryMB func(int) float64) bool {
		fa := float64(a.Instances) * memoryMB(a.FunctionID)
		fb := float64(b.Instances) * memoryMB(b.FunctionID)
		if fa != fb {
			return fa > fb
		}
		return a.FunctionID > b.FunctionID
	}}
}

// NewAdmissionPolicy creates an admission policy by name.
// An empty string defaults to newest-first. Panics on unrecognized names.
func NewAdmissionPolicy(name string) AdmissionPolicy {
	if !IsValidAdmissionPolicy(name) {
		panic(fmt.Sprintf("unknown admission policy %q", name))
	}
	switch name {
	case "", AdmissionNewestFirst:
		return NewestFirst()
	case AdmissionOldestFirst:
		return OldestFirst()
	case AdmissionLargestFirst:
		return LargestFirst()
	default:
		panic(fmt.Sprintf("unhandled admission policy %q", name))
	}
}

// ReplacementPolicy decides what happens to a live reservation when a new
// decision reserves the same function in the same pool.
type ReplacementPolicy string

const (
	// ReplaceOverwrite drops the replaced reservation without charging its
	// partial keep-alive carbon.
	ReplaceOverwrite ReplacementPolicy = "overwrite"
	// ReplaceSettle charges the replaced reservation for the time it was held.
	ReplaceSettle ReplacementPolicy = "settle"
)

// ValidReplacementPolicies is the set of recognized replacement policy names.
var ValidReplacementPolicies = map[string]bool{"": true, string(ReplaceOverwrite): true, string(ReplaceSettle): true}

// IsValidReplacementPolicy reports whether name is a recognized replacement policy.
func IsValidReplacementPolicy(name string) bool {
	return ValidReplacementPolicies[name]
}
