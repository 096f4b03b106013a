package sim

// InterInvocationGaps returns the distances between consecutive time steps
// with a non-zero invocation count inside window.
func InterInvocationGaps(window []int) []int {
	gaps := make([]int, 0)
	last := -1
	for i, count := range window {
		if count == 0 {
			continue
		}
		if last >= 0 {
			gaps = append(gaps, i-last)
		}
		last = i
	}
	return gaps
}

// ColdWarmProbability estimates the probability that the next invocation is
// served cold or warm under a keep-alive of kat minutes. A gap longer than kat
// means the instance expired first; a gap equal to kat is still warm.
// Without history the prior is (0.5, 0.5).
func ColdWarmProbability(gaps []int, kat float64) (cold, warm float64) {
	if len(gaps) == 0 {
		return 0.5, 0.5
	}
	coldCount := 0
	for _, gap := range gaps {
		if float64(gap) > kat {
			coldCount++
		}
	}
	cold = float64(coldCount) / float64(len(gaps))
	return cold, 1 - cold
}
