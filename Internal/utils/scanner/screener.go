package scanner

import (
	"fmt"
	"math"

	"github.com/fazecat/niftyscreener/Internal/strategy/indicators"
	"github.com/fazecat/niftyscreener/Internal/strategy/signals"
	"github.com/fazecat/niftyscreener/Internal/types"
)

// CompositeResult is a symbol that met the composite score floor.
type CompositeResult struct {
	Symbol     string               `json:"symbol"`
	Price      float64              `json:"price"`
	RSI        float64              `json:"rsi"`
	Volume     float64              `json:"volume"`
	ADX        float64              `json:"adx"`
	ATR        float64              `json:"atr"`
	Score      int                  `json:"score"`
	Conditions signals.ConditionSet `json:"conditions"`
	Indicators map[string]float64   `json:"indicators,omitempty"`
	Tail       *indicators.Series   `json:"-"`
}

// Result is one qualifying symbol. Exactly one of Composite and Swing is set,
// matching Mode.
type Result struct {
	Mode      Mode                     `json:"mode"`
	Composite *CompositeResult         `json:"composite,omitempty"`
	Swing     *signals.SwingAssessment `json:"swing,omitempty"`
}

func (r Result) Symbol() string {
	if r.Swing != nil {
		return r.Swing.Symbol
	}
	if r.Composite != nil {
		return r.Composite.Symbol
	}
	return ""
}

// SortKey is the ranking value: risk/reward in swing mode, score otherwise.
func (r Result) SortKey() float64 {
	if r.Swing != nil {
		return r.Swing.RiskReward
	}
	if r.Composite != nil {
		return float64(r.Composite.Score)
	}
	return 0
}

func scoreComposite(symbol string, bars []types.Bar, opts Options) (*Result, error) {
	series := indicators.CalculateAll(symbol, bars)
	if err := checkFinite(series); err != nil {
		return nil, err
	}

	score, conditions := signals.EvaluateConditions(series, opts.Thresholds)
	if len(conditions) == 0 {
		return nil, fmt.Errorf("%s has %d bars, composite needs %d: %w",
			symbol, series.Len(), signals.MinCompositeBars, ErrInsufficientHistory)
	}
	if score < opts.MinCompositeScore {
		return nil, nil
	}

	return &Result{
		Mode: ModeComposite,
		Composite: &CompositeResult{
			Symbol:     symbol,
			Price:      series.Latest(indicators.Close),
			RSI:        series.Latest(indicators.RSI),
			Volume:     series.Latest(indicators.Volume),
			ADX:        series.Latest(indicators.ADX),
			ATR:        series.Latest(indicators.ATR),
			Score:      score,
			Conditions: conditions,
			Indicators: series.Snapshot(),
			Tail:       series.Tail(opts.TailBars),
		},
	}, nil
}

func scoreSwing(symbol string, bars []types.Bar, opts Options) (*Result, error) {
	series := indicators.CalculateAll(symbol, bars)
	if err := checkFinite(series); err != nil {
		return nil, err
	}

	qualified, assessment := opts.Swing.Qualify(series, opts.Classifier)
	if len(assessment.Filters) == 0 {
		return nil, fmt.Errorf("%s has %d bars, swing needs %d: %w",
			symbol, series.Len(), signals.MinSwingBars, ErrInsufficientHistory)
	}
	if !qualified {
		return nil, nil
	}
	return &Result{Mode: ModeSwing, Swing: &assessment}, nil
}

// checkFinite rejects a series whose latest values went NaN or infinite,
// typically from malformed bars.
func checkFinite(s *indicators.Series) error {
	for _, name := range s.Names() {
		v := s.Latest(name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ComputeError{Symbol: s.Symbol, Err: fmt.Errorf("%s is %v on the latest bar", name, v)}
		}
	}
	return nil
}
