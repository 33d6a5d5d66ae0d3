package indicators

type Ichimoku struct {
	Tenkan  []float64
	Kijun   []float64
	SenkouA []float64
	SenkouB []float64
}

func CalculateIchimoku(highs, lows []float64, tenkanPeriod, kijunPeriod, senkouBPeriod, displacement int) Ichimoku {
	tenkan := midpoint(RollingMax(highs, tenkanPeriod), RollingMin(lows, tenkanPeriod))
	kijun := midpoint(RollingMax(highs, kijunPeriod), RollingMin(lows, kijunPeriod))
	spanB := midpoint(RollingMax(highs, senkouBPeriod), RollingMin(lows, senkouBPeriod))

	return Ichimoku{
		Tenkan:  tenkan,
		Kijun:   kijun,
		SenkouA: ShiftForward(midpoint(tenkan, kijun), displacement),
		SenkouB: ShiftForward(spanB, displacement),
	}
}
