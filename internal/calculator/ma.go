package calculator

import "math"

// RollingSMA computes the trailing simple moving average of values over the given window.
// Entries before the window fills are NaN. A non-positive window yields all NaN.
// A window holding a single repeated value averages to exactly that value.
func RollingSMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || window > len(values) {
		return out
	}

	// Sum deviations from the first value to keep rounding drift small.
	base := values[0]
	sum := 0.0
	run := 0
	for i, v := range values {
		sum += v - base
		if i >= window {
			// Drop the value leaving the window
			sum -= values[i-window] - base
		}
		if i > 0 && v == values[i-1] {
			run++
		} else {
			run = 1
		}
		if i < window-1 {
			continue
		}
		if run >= window {
			out[i] = v
		} else {
			out[i] = base + sum/float64(window)
		}
	}
	return out
}
