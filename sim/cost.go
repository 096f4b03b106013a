package sim

// CostModel maps functions and servers to service times and carbon costs.
// Implementations must be pure: identical inputs yield identical outputs.
// Lookups without a profile return an error wrapping ErrProfileMissing.
type CostModel interface {
	// ServiceTimes returns the cold and warm service time (seconds) of fn on server.
	ServiceTimes(fn Function, server string) (cold, warm float64, err error)

	// ExecutionCarbon returns the carbon (grams) of one cold and one warm
	// execution on each generation of pair, indexed by Generation.
	// Monotonic non-decreasing in carbonIntensity.
	ExecutionCarbon(fn Function, pair ServerPair, carbonIntensity float64) (cold, warm [2]float64, err error)

	// KeepAliveCarbon returns the carbon of keeping one instance of fn warm on
	// server for the given number of minutes. Zero minutes costs zero.
	KeepAliveCarbon(fn Function, server string, minutes, carbonIntensity float64) (float64, error)
}

// Outcome is the per-invocation cost of one execution mode on one generation.
type Outcome struct {
	ServiceTime float64
	Carbon      float64
}

// Score weighs an outcome by lambda (service time) and 1-lambda (carbon).
func (o Outcome) Score(lambda float64) float64 {
	return lambda*o.ServiceTime + (1-lambda)*o.Carbon
}

// ExecutionProfile holds cold and warm outcomes on both generations at one
// carbon intensity.
type ExecutionProfile struct {
	Cold [2]Outcome
	Warm [2]Outcome
}

// NewExecutionProfile queries the cost model for fn at the given intensity.
func NewExecutionProfile(cm CostModel, fn Function, pair ServerPair, carbonIntensity float64) (ExecutionProfile, error) {
	var p ExecutionProfile
	for _, g := range Generations {
		cold, warm, err := cm.ServiceTimes(fn, pair.Server(g))
		if err != nil {
			return p, err
		}
		p.Cold[g].ServiceTime = cold
		p.Warm[g].ServiceTime = warm
	}
	coldCarbon, warmCarbon, err := cm.ExecutionCarbon(fn, pair, carbonIntensity)
	if err != nil {
		return p, err
	}
	for _, g := range Generations {
		p.Cold[g].Carbon = coldCarbon[g]
		p.Warm[g].Carbon = warmCarbon[g]
	}
	return p, nil
}
