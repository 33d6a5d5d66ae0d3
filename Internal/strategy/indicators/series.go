package indicators

import (
	"fmt"
	"math"
	"sort"

	"github.com/fazecat/niftyscreener/Internal/types"
)

// Series names. Every computed series is index-aligned with the bars.
const (
	Open       = "open"
	High       = "high"
	Low        = "low"
	Close      = "close"
	Volume     = "volume"
	EMA5       = "ema5"
	EMA13      = "ema13"
	EMA26      = "ema26"
	SMA50      = "sma50"
	SMA100     = "sma100"
	SMA200     = "sma200"
	RSI        = "rsi"
	StochRSI   = "stoch_rsi"
	MACD       = "macd"
	MACDSignal = "macd_signal"
	BBUpper    = "bb_upper"
	BBLower    = "bb_lower"
	ATR        = "atr"
	ADX        = "adx"
	DIPlus     = "di_plus"
	DIMinus    = "di_minus"
	OBV        = "obv"
	VWAP       = "vwap"
	VolAvg30   = "vol_30d_avg"
	VolRatio   = "vol_ratio"
	Tenkan     = "tenkan"
	Kijun      = "kijun"
	SenkouA    = "senkou_a"
	SenkouB    = "senkou_b"
)

// Series holds one symbol's bars plus the derived indicator series. It is
// built per scan, owned by a single worker and discarded after scoring.
type Series struct {
	Symbol string
	Bars   []types.Bar
	values map[string][]float64
}

func NewSeries(symbol string, bars []types.Bar) *Series {
	owned := make([]types.Bar, len(bars))
	copy(owned, bars)
	return &Series{
		Symbol: symbol,
		Bars:   owned,
		values: make(map[string][]float64),
	}
}

func (s *Series) Len() int {
	return len(s.Bars)
}

// Set stores a derived series. It refuses anything that would break index
// alignment with the bars.
func (s *Series) Set(name string, values []float64) error {
	if len(values) != len(s.Bars) {
		return fmt.Errorf("series %s has %d values, want %d", name, len(values), len(s.Bars))
	}
	s.values[name] = values
	return nil
}

func (s *Series) Values(name string) ([]float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Value returns the value of name at index i; negative indexes count from the
// end (-1 is the latest bar). Missing series or out-of-range indexes yield NaN.
func (s *Series) Value(name string, i int) float64 {
	v, ok := s.values[name]
	if !ok {
		return math.NaN()
	}
	if i < 0 {
		i += len(v)
	}
	if i < 0 || i >= len(v) {
		return math.NaN()
	}
	return v[i]
}

func (s *Series) Latest(name string) float64 {
	return s.Value(name, -1)
}

func (s *Series) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tail returns a copy of the last n bars and their values.
func (s *Series) Tail(n int) *Series {
	if n > len(s.Bars) {
		n = len(s.Bars)
	}
	if n < 0 {
		n = 0
	}
	start := len(s.Bars) - n
	tail := NewSeries(s.Symbol, s.Bars[start:])
	for name, v := range s.values {
		window := make([]float64, n)
		copy(window, v[start:])
		tail.values[name] = window
	}
	return tail
}

// Snapshot flattens the latest value of every series, for logging and APIs.
func (s *Series) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for name := range s.values {
		out[name] = s.Latest(name)
	}
	return out
}

// CalculateAll derives the full indicator set from bars. It is deterministic
// and never fails: short histories produce warm-up values rather than gaps.
func CalculateAll(symbol string, bars []types.Bar) *Series {
	s := NewSeries(symbol, bars)

	open := types.Opens(s.Bars)
	high := types.Highs(s.Bars)
	low := types.Lows(s.Bars)
	closes := types.Closes(s.Bars)
	volume := types.Volumes(s.Bars)

	s.values[Open] = open
	s.values[High] = high
	s.values[Low] = low
	s.values[Close] = closes
	s.values[Volume] = volume

	s.values[EMA5] = CalculateEMA(closes, 5)
	s.values[EMA13] = CalculateEMA(closes, 13)
	s.values[EMA26] = CalculateEMA(closes, 26)
	s.values[SMA50] = CalculateSMA(closes, 50)
	s.values[SMA100] = CalculateSMA(closes, 100)
	s.values[SMA200] = CalculateSMA(closes, 200)

	rsi := CalculateRSI(closes, 14)
	s.values[RSI] = rsi
	s.values[StochRSI] = CalculateStochRSI(rsi, 14)

	s.values[MACD], s.values[MACDSignal] = CalculateMACD(closes, 12, 26, 9)

	bands := CalculateBollinger(closes, 20, 2)
	s.values[BBUpper] = bands.Upper
	s.values[BBLower] = bands.Lower

	s.values[ATR] = CalculateATR(high, low, closes, 14)
	di := CalculateADX(high, low, closes, 14)
	s.values[ADX] = di.ADX
	s.values[DIPlus] = di.PlusDI
	s.values[DIMinus] = di.MinusDI

	s.values[OBV] = CalculateOBV(closes, volume)
	s.values[VWAP] = CalculateVWAP(closes, volume, 20)
	s.values[VolRatio], s.values[VolAvg30] = CalculateVolumeRatio(volume, 30)

	cloud := CalculateIchimoku(high, low, 9, 26, 52, 26)
	s.values[Tenkan] = cloud.Tenkan
	s.values[Kijun] = cloud.Kijun
	s.values[SenkouA] = cloud.SenkouA
	s.values[SenkouB] = cloud.SenkouB

	return s
}
