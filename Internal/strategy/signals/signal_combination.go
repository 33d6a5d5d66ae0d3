package signals

import (
	"math"

	"github.com/fazecat/niftyscreener/Internal/strategy/indicators"
)

// MinCompositeBars is the shortest history the composite score is defined for.
const MinCompositeBars = 50

// Condition identifiers, in evaluation order.
const (
	CondEMA5AboveEMA13     = "C1_EMA5_Above_EMA13"
	CondEMA13AboveEMA26    = "C2_EMA13_Above_EMA26"
	CondSMA50AboveSMA100   = "C3_SMA50_Above_SMA100"
	CondSMA100AboveSMA200  = "C4_SMA100_Above_SMA200"
	CondDIPlusAboveDIMinus = "C5_DIPlus_Above_DIMinus"
	CondADXAboveThreshold  = "C6_ADX_Above_Threshold"
	CondMACDAboveSignal    = "C7_MACD_Above_Signal"
	CondRSIInRange         = "C8_RSI_In_Range"
	CondStochRSIBelowMax   = "C9_StochRSI_Below_Threshold"
	CondCloseAboveBBUpper  = "C10_Close_Above_BB_Upper"
	CondBullishCandle      = "C11_Bullish_Candle"
	CondVolumeAboveMin     = "C12_Volume_Above_Min"
	CondNear52WeekHigh     = "C13_Price_Near_52W_High"
	CondHigherClose        = "C14_Higher_Close"
	CondVolumeAboveAvg     = "C15_Volume_Above_Avg"
	CondCloseAboveVWAP     = "C16_Close_Above_VWAP"
	CondRSIRising3Days     = "C17_RSI_Rising_3Days"
	CondOBVRising          = "C18_OBV_Rising"
	CondIchimokuBullish    = "C19_Ichimoku_Bullish"
	CondCloudAbove         = "C20_Cloud_Above"
)

var ConditionNames = []string{
	CondEMA5AboveEMA13, CondEMA13AboveEMA26, CondSMA50AboveSMA100, CondSMA100AboveSMA200,
	CondDIPlusAboveDIMinus, CondADXAboveThreshold, CondMACDAboveSignal, CondRSIInRange,
	CondStochRSIBelowMax, CondCloseAboveBBUpper, CondBullishCandle, CondVolumeAboveMin,
	CondNear52WeekHigh, CondHigherClose, CondVolumeAboveAvg, CondCloseAboveVWAP,
	CondRSIRising3Days, CondOBVRising, CondIchimokuBullish, CondCloudAbove,
}

type ConditionSet map[string]bool

// Score counts the satisfied conditions.
func (c ConditionSet) Score() int {
	score := 0
	for _, ok := range c {
		if ok {
			score++
		}
	}
	return score
}

// Passed lists satisfied conditions in evaluation order.
func (c ConditionSet) Passed() []string {
	var passed []string
	for _, name := range ConditionNames {
		if c[name] {
			passed = append(passed, name)
		}
	}
	return passed
}

// EvaluateConditions scores the latest bar of an indicator-populated series
// against the 20 composite conditions. Below MinCompositeBars it returns a zero
// score and an empty set, which callers treat as "skip".
func EvaluateConditions(s *indicators.Series, th Thresholds) (int, ConditionSet) {
	n := s.Len()
	if n < MinCompositeBars {
		return 0, ConditionSet{}
	}

	latest := func(name string) float64 { return s.Latest(name) }
	closeNow := latest(indicators.Close)
	volumeNow := latest(indicators.Volume)
	rsiNow := latest(indicators.RSI)
	tenkan := latest(indicators.Tenkan)

	highs, _ := s.Values(indicators.High)
	volumes, _ := s.Values(indicators.Volume)
	lookback := n
	if lookback > 200 {
		lookback = 200
	}
	high52w := maxOf(highs[n-lookback:])
	volAvg20 := indicators.RollingMean(volumes, 20)[n-1]

	obvIdx := n - 6
	if obvIdx < 0 {
		obvIdx = 0
	}
	rsi, _ := s.Values(indicators.RSI)

	conditions := ConditionSet{
		CondEMA5AboveEMA13:     latest(indicators.EMA5) > latest(indicators.EMA13),
		CondEMA13AboveEMA26:    latest(indicators.EMA13) > latest(indicators.EMA26),
		CondSMA50AboveSMA100:   latest(indicators.SMA50) > latest(indicators.SMA100),
		CondSMA100AboveSMA200:  latest(indicators.SMA100) > latest(indicators.SMA200),
		CondDIPlusAboveDIMinus: latest(indicators.DIPlus) > latest(indicators.DIMinus),
		CondADXAboveThreshold:  latest(indicators.ADX) > th.ADXMin,
		CondMACDAboveSignal:    latest(indicators.MACD) > latest(indicators.MACDSignal),
		CondRSIInRange:         th.RSIMin < rsiNow && rsiNow < th.RSIMax,
		CondStochRSIBelowMax:   latest(indicators.StochRSI) < th.StochRSIMax,
		CondCloseAboveBBUpper:  closeNow > latest(indicators.BBUpper),
		CondBullishCandle:      closeNow > latest(indicators.Open),
		CondVolumeAboveMin:     volumeNow > th.VolumeMin,
		CondNear52WeekHigh:     closeNow > high52w*th.HighThreshold,
		CondHigherClose:        closeNow > s.Value(indicators.Close, -2),
		CondVolumeAboveAvg:     volumeNow > volAvg20,
		CondCloseAboveVWAP:     closeNow > latest(indicators.VWAP),
		CondRSIRising3Days:     strictlyRising(rsi, 3),
		CondOBVRising:          latest(indicators.OBV) > s.Value(indicators.OBV, obvIdx),
		CondIchimokuBullish:    closeNow > tenkan && tenkan > latest(indicators.Kijun),
		CondCloudAbove:         latest(indicators.SenkouA) > latest(indicators.SenkouB),
	}
	return conditions.Score(), conditions
}

// strictlyRising reports whether each of the last steps day-over-day changes
// is an increase. Fewer samples than that is vacuously true.
func strictlyRising(values []float64, steps int) bool {
	if len(values) <= steps {
		return true
	}
	for i := 0; i < steps; i++ {
		cur := len(values) - 1 - i
		if !(values[cur] > values[cur-1]) {
			return false
		}
	}
	return true
}

func maxOf(values []float64) float64 {
	best := math.Inf(-1)
	for _, v := range values {
		if v > best {
			best = v
		}
	}
	return best
}
