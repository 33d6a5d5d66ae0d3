package indicators

import "math"

type DirectionalIndex struct {
	PlusDI  []float64
	MinusDI []float64
	ADX     []float64
}

// CalculateDirectionalMovement returns +DM and -DM. Only the larger of the up
// move (high - prevHigh) and down move (prevLow - low) counts, and only when it
// is positive.
func CalculateDirectionalMovement(highs, lows []float64) (plusDM, minusDM []float64) {
	plusDM = make([]float64, len(highs))
	minusDM = make([]float64, len(highs))
	for i := 1; i < len(highs); i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}
	return plusDM, minusDM
}

func CalculateADX(highs, lows, closes []float64, period int) DirectionalIndex {
	atr := CalculateATR(highs, lows, closes, period)
	plusDM, minusDM := CalculateDirectionalMovement(highs, lows)
	plusAvg := RollingMean(plusDM, period)
	minusAvg := RollingMean(minusDM, period)

	n := len(closes)
	di := DirectionalIndex{
		PlusDI:  make([]float64, n),
		MinusDI: make([]float64, n),
	}
	dx := make([]float64, n)
	for i := 0; i < n; i++ {
		di.PlusDI[i] = 100 * plusAvg[i] / (atr[i] + Epsilon)
		di.MinusDI[i] = 100 * minusAvg[i] / (atr[i] + Epsilon)
		dx[i] = 100 * math.Abs(di.PlusDI[i]-di.MinusDI[i]) / (di.PlusDI[i] + di.MinusDI[i] + Epsilon)
	}
	di.ADX = RollingMean(dx, period)
	return di
}
