package runner

// Distribute splits total scenarios across workers as evenly as possible:
// every worker receives total/workers scenarios and the first total%workers
// workers take one extra. The shares always sum to total exactly.
func Distribute(total, workers int) []int {
	if workers <= 0 {
		return nil
	}
	shares := make([]int, workers)
	if total <= 0 {
		return shares
	}
	base := total / workers
	remainder := total % workers
	for i := range shares {
		shares[i] = base
		if i < remainder {
			shares[i]++
		}
	}
	return shares
}
