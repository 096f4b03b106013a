package sim

import (
	"errors"
	"fmt"
)

// ErrProfileMissing is wrapped by cost lookups that have no profile entry
// for a (function, server) pair. No cost can be computed, so it is fatal.
var ErrProfileMissing = errors.New("cost profile missing")

// InvariantViolation reports a non-positive realized service time or carbon
// cost. It indicates a defect in the cost model or arithmetic and stops the run.
type InvariantViolation struct {
	Function    string
	Clock       int64
	ServiceTime float64
	Carbon      float64
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation for %s at step %d: service time %g, carbon %g (both must be positive)",
		e.Function, e.Clock, e.ServiceTime, e.Carbon)
}
