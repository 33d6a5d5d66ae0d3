package indicators

// CalculateEMA seeds with the first sample and applies
// ema[i] = alpha*x[i] + (1-alpha)*ema[i-1] with alpha = 2/(span+1).
func CalculateEMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func CalculateSMA(values []float64, window int) []float64 {
	return RollingMean(values, window)
}
