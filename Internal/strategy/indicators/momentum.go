package indicators

// CalculateRSI uses Wilder smoothing (alpha = 1/period). The averages are
// seeded with the mean of the first period gains and losses, or of every
// sample when the history is shorter than that.
func CalculateRSI(closes []float64, period int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if period < 1 {
		period = 1
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i, d := range Diff(closes) {
		if d > 0 {
			gains[i] = d
		} else if d < 0 {
			losses[i] = -d
		}
	}

	seed := period
	if seed > n {
		seed = n
	}
	avgGain := mean(gains[:seed])
	avgLoss := mean(losses[:seed])
	alpha := 1.0 / float64(period)

	for i := 0; i < n; i++ {
		if i > 0 {
			avgGain = alpha*gains[i] + (1-alpha)*avgGain
			avgLoss = alpha*losses[i] + (1-alpha)*avgLoss
		}
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

// A series with no movement at all has no momentum either way and reads 50.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgGain == 0 && avgLoss == 0 {
		return 50
	}
	rs := avgGain / (avgLoss + Epsilon)
	return 100 - 100/(1+rs)
}

func CalculateStochRSI(rsi []float64, period int) []float64 {
	lo := RollingMin(rsi, period)
	hi := RollingMax(rsi, period)
	out := make([]float64, len(rsi))
	for i := range rsi {
		out[i] = (rsi[i] - lo[i]) / (hi[i] - lo[i] + Epsilon) * 100
	}
	return out
}

// CalculateMACD returns the MACD line (EMA fast - EMA slow) and its signal EMA.
func CalculateMACD(closes []float64, fast, slow, signal int) (line, signalLine []float64) {
	fastEMA := CalculateEMA(closes, fast)
	slowEMA := CalculateEMA(closes, slow)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	return line, CalculateEMA(line, signal)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
