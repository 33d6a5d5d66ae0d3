package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fazecat/niftyscreener/Internal/strategy/indicators"
	"github.com/fazecat/niftyscreener/Internal/strategy/sectors"
)

func TestSwingFilter_AssessTrendingFinance(t *testing.T) {
	f := NewSwingFilter()
	a := f.Assess("HDFCBANK", 1500, 50, 55, 2.0, sectors.ParseLabel("Finance🔥"))

	assert.Equal(t, 1575.0, a.Target1)
	assert.Equal(t, 1600.0, a.Target2)
	assert.Equal(t, 1450.0, a.StopLoss)
	assert.Equal(t, 2.0, a.RiskReward)
	assert.Equal(t, "Finance🔥", a.SectorLabel)
	assert.Equal(t, 5, a.FiltersPassed)
	for _, name := range FilterNames {
		assert.Truef(t, a.Filters[name], "filter %s", name)
	}
	assert.True(t, f.Qualified(a))
}

func TestSwingFilter_Filters(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		rsi      float64
		volRatio float64
		sector   sectors.Sector
		failed   []string
		qualify  bool
	}{
		{"non trending still qualifies", 500, 50, 1.6, sectors.Others, []string{FilterTrendingSector}, true},
		{"price above range", 2500, 50, 1.6, sectors.Others, []string{FilterPriceRange, FilterTrendingSector}, false},
		{"price at lower bound", 50, 40, 1.5, sectors.Others, []string{FilterTrendingSector}, true},
		{"rsi overbought", 500, 70, 2.0, sectors.ParseLabel("IT🔥"), []string{FilterRSIRange}, true},
		{"thin volume and cold rsi", 500, 30, 1.0, sectors.ParseLabel("IT🔥"), []string{FilterRSIRange, FilterVolumeOK}, false},
	}
	f := NewSwingFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := f.Assess("X", tt.price, 10, tt.rsi, tt.volRatio, tt.sector)
			var failed []string
			for _, name := range FilterNames {
				if !a.Filters[name] {
					failed = append(failed, name)
				}
			}
			assert.Equal(t, tt.failed, failed)
			assert.Equal(t, len(FilterNames)-len(tt.failed), a.FiltersPassed)
			assert.Equal(t, tt.qualify, f.Qualified(a))
		})
	}
}

func TestSwingFilter_TrendingSectorRelaxesRiskReward(t *testing.T) {
	f := NewSwingFilter()
	f.Target2ATR = 1.9

	hot := f.Assess("NTPC", 300, 10, 50, 2.0, sectors.ParseLabel("Power🔥"))
	cold := f.Assess("ITC", 300, 10, 50, 2.0, sectors.ParseLabel("FMCG"))

	assert.InDelta(t, 1.9, hot.RiskReward, 1e-9)
	assert.True(t, hot.Filters[FilterRROK])
	assert.False(t, cold.Filters[FilterRROK])

	f.Target2ATR = 1.7
	hot = f.Assess("NTPC", 300, 10, 50, 2.0, sectors.ParseLabel("Power🔥"))
	assert.False(t, hot.Filters[FilterRROK])
}

func TestSwingFilter_RiskRewardNeverNegative(t *testing.T) {
	f := NewSwingFilter()
	for _, atr := range []float64{0, -5} {
		a := f.Assess("X", 100, atr, 50, 2, sectors.Others)
		assert.Zero(t, a.RiskReward)
		assert.False(t, a.Filters[FilterRROK])
	}
}

func TestSwingFilter_QualifyShortHistorySkips(t *testing.T) {
	s := indicators.CalculateAll("SBIN", risingBars(MinSwingBars-1))
	ok, a := NewSwingFilter().Qualify(s, sectors.DefaultClassifier())

	assert.False(t, ok)
	assert.Empty(t, a.Filters)
	assert.Equal(t, "SBIN", a.Symbol)
}

func TestSwingFilter_QualifyUsesLatestBar(t *testing.T) {
	s := indicators.CalculateAll("SBIN", risingBars(120))
	_, a := NewSwingFilter().Qualify(s, sectors.DefaultClassifier())

	require.Len(t, a.Filters, len(FilterNames))
	assert.Equal(t, s.Latest(indicators.Close), a.Price)
	assert.Equal(t, s.Latest(indicators.RSI), a.RSI)
	assert.InDelta(t, a.Price+2*s.Latest(indicators.ATR), a.Target2, 1e-9)
	assert.True(t, a.Sector.Trending)
	assert.True(t, a.Filters[FilterTrendingSector])
}
