package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions        int
	KeepAliveDecisions    int            // decisions with a non-zero keep-alive
	MeanKeepAlive         float64        // minutes, over all decisions
	PlacementDistribution map[string]int // generation → decisions placed there
	Discards              int
	DiscardsByGeneration  map[string]int
	SettledCarbon         float64 // only populated at full level
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PlacementDistribution: make(map[string]int),
		DiscardsByGeneration:  make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Decisions)
	totalKeepAlive := 0
	for _, d := range st.Decisions {
		summary.PlacementDistribution[d.Generation]++
		totalKeepAlive += d.KeepAlive
		if d.KeepAlive > 0 {
			summary.KeepAliveDecisions++
		}
	}
	if summary.TotalDecisions > 0 {
		summary.MeanKeepAlive = float64(totalKeepAlive) / float64(summary.TotalDecisions)
	}

	summary.Discards = len(st.Admissions)
	for _, a := range st.Admissions {
		summary.DiscardsByGeneration[a.Generation]++
	}
	for _, s := range st.Settlements {
		summary.SettledCarbon += s.Carbon
	}
	return summary
}
