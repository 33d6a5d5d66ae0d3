package indicators

import "math"

// CalculateTrueRange uses high-low on the first bar since there is no prior close.
func CalculateTrueRange(highs, lows, closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		hl := highs[i] - lows[i]
		if i == 0 {
			out[i] = hl
			continue
		}
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

func CalculateATR(highs, lows, closes []float64, period int) []float64 {
	return RollingMean(CalculateTrueRange(highs, lows, closes), period)
}

type BollingerBands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

func CalculateBollinger(closes []float64, window int, k float64) BollingerBands {
	mid := RollingMean(closes, window)
	std := RollingStd(closes, window)
	bands := BollingerBands{
		Upper:  make([]float64, len(closes)),
		Middle: mid,
		Lower:  make([]float64, len(closes)),
	}
	for i := range closes {
		bands.Upper[i] = mid[i] + k*std[i]
		bands.Lower[i] = mid[i] - k*std[i]
	}
	return bands
}
