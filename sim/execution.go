package sim

// PooledReservation pairs a reservation with the pool generation that held it.
type PooledReservation struct {
	Generation  Generation
	Reservation *Reservation
}

// Execution is the realized cost of one function's invocations at one step.
type Execution struct {
	Count       int
	Warm        [2]int // warm starts served per generation
	Cold        [2]int // cold starts per generation
	ServiceTime float64
	Carbon      float64
	// Consumed lists the reservations whose instances served warm starts.
	// They have been removed from their pools and still need settling.
	Consumed []PooledReservation
}

// WarmStarts returns the number of invocations served warm.
func (e Execution) WarmStarts() int { return e.Warm[Old] + e.Warm[New] }

// ColdStarts returns the number of invocations served cold.
func (e Execution) ColdStarts() int { return e.Cold[Old] + e.Cold[New] }

// Execute serves count invocations of fn at clock. Live reservations are used
// first, preferring the generation with the lower lambda-weighted warm score;
// remaining invocations start cold on the generation with the lower weighted
// cold score (Old on ties). Used reservations are removed from their pool.
//
// The realized cost does not depend on the decision taken for this step:
// decisions only shape reservations for later invocations.
func Execute(fn Function, count int, clock int64, pools [2]*WarmPool, profile ExecutionProfile, lambda float64) (Execution, error) {
	exec := Execution{Count: count}
	if count <= 0 {
		return exec, nil
	}

	warmOrder := [2]Generation{Old, New}
	if profile.Warm[New].Score(lambda) < profile.Warm[Old].Score(lambda) {
		warmOrder = [2]Generation{New, Old}
	}
	remaining := count
	for _, g := range warmOrder {
		if remaining == 0 {
			break
		}
		r, ok := pools[g].Get(fn.ID)
		if !ok || !r.Live(clock) {
			continue
		}
		served := min(remaining, r.Instances)
		exec.Warm[g] += served
		remaining -= served
		pools[g].Remove(fn.ID)
		exec.Consumed = append(exec.Consumed, PooledReservation{Generation: g, Reservation: r})
	}

	coldGen := Old
	if profile.Cold[New].Score(lambda) < profile.Cold[Old].Score(lambda) {
		coldGen = New
	}
	exec.Cold[coldGen] = remaining

	for _, g := range Generations {
		exec.ServiceTime += float64(exec.Warm[g])*profile.Warm[g].ServiceTime + float64(exec.Cold[g])*profile.Cold[g].ServiceTime
		exec.Carbon += float64(exec.Warm[g])*profile.Warm[g].Carbon + float64(exec.Cold[g])*profile.Cold[g].Carbon
	}
	if exec.ServiceTime <= 0 || exec.Carbon <= 0 {
		return exec, &InvariantViolation{Function: fn.Name, Clock: clock, ServiceTime: exec.ServiceTime, Carbon: exec.Carbon}
	}
	return exec, nil
}
