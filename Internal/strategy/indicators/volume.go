package indicators

// CalculateOBV accumulates volume signed by the direction of the close.
func CalculateOBV(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	running := 0.0
	for i, d := range Diff(closes) {
		if d > 0 {
			running += volumes[i]
		} else if d < 0 {
			running -= volumes[i]
		}
		out[i] = running
	}
	return out
}

// CalculateVWAP is the rolling sum(close*volume)/sum(volume). A window with no
// traded volume falls back to the close.
func CalculateVWAP(closes, volumes []float64, window int) []float64 {
	pv := make([]float64, len(closes))
	for i := range closes {
		pv[i] = closes[i] * volumes[i]
	}
	pvSum := RollingSum(pv, window)
	volSum := RollingSum(volumes, window)

	out := make([]float64, len(closes))
	for i := range closes {
		if volSum[i] == 0 {
			out[i] = closes[i]
			continue
		}
		out[i] = pvSum[i] / volSum[i]
	}
	return out
}

// CalculateVolumeRatio divides each volume by its rolling mean; 0 when the
// mean is 0.
func CalculateVolumeRatio(volumes []float64, window int) (ratio, average []float64) {
	average = RollingMean(volumes, window)
	ratio = make([]float64, len(volumes))
	for i := range volumes {
		if average[i] == 0 {
			continue
		}
		ratio[i] = volumes[i] / average[i]
	}
	return ratio, average
}
