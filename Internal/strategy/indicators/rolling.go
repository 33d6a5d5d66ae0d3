package indicators

import "math"

// Epsilon is added to every denominator that can reach zero.
const Epsilon = 1e-8

// All rolling helpers use a minimum period of 1: before the window fills they
// aggregate whatever samples are available, so the output is always the same
// length as the input.

func windowStart(i, window int) int {
	if window < 1 {
		window = 1
	}
	start := i - window + 1
	if start < 0 {
		return 0
	}
	return start
}

func RollingSum(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		sum := 0.0
		for j := windowStart(i, window); j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum
	}
	return out
}

func RollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := windowStart(i, window)
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(i-start+1)
	}
	return out
}

// RollingStd is the sample standard deviation (n-1). A window holding a single
// sample has a deviation of 0.
func RollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := windowStart(i, window)
		count := i - start + 1
		if count < 2 {
			continue
		}
		mean := 0.0
		for j := start; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(count)
		ss := 0.0
		for j := start; j <= i; j++ {
			d := values[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(count-1))
	}
	return out
}

func RollingMax(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		best := values[windowStart(i, window)]
		for j := windowStart(i, window) + 1; j <= i; j++ {
			if values[j] > best {
				best = values[j]
			}
		}
		out[i] = best
	}
	return out
}

func RollingMin(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		best := values[windowStart(i, window)]
		for j := windowStart(i, window) + 1; j <= i; j++ {
			if values[j] < best {
				best = values[j]
			}
		}
		out[i] = best
	}
	return out
}

// ShiftForward moves values later by periods bars. The leading gap is
// back-filled with the first value, so out[i] = values[max(0, i-periods)].
func ShiftForward(values []float64, periods int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		src := i - periods
		if src < 0 {
			src = 0
		}
		out[i] = values[src]
	}
	return out
}

// Diff returns day-over-day changes with a leading 0.
func Diff(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i] - values[i-1]
	}
	return out
}

func midpoint(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = (a[i] + b[i]) / 2
	}
	return out
}
