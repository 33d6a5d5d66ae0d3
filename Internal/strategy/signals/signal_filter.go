package signals

import (
	"github.com/fazecat/niftyscreener/Internal/strategy/indicators"
	"github.com/fazecat/niftyscreener/Internal/strategy/sectors"
)

// MinSwingBars is the shortest history the swing qualifier is defined for.
const MinSwingBars = 30

// Swing filter keys.
const (
	FilterPriceRange     = "price_range"
	FilterRSIRange       = "rsi_range"
	FilterVolumeOK       = "volume_ok"
	FilterRROK           = "rr_ratio_ok"
	FilterTrendingSector = "trending_sector"
)

var FilterNames = []string{FilterPriceRange, FilterRSIRange, FilterVolumeOK, FilterRROK, FilterTrendingSector}

// SwingAssessment is the swing-trade view of a symbol's latest bar.
type SwingAssessment struct {
	Symbol        string          `json:"symbol"`
	Price         float64         `json:"price"`
	Target1       float64         `json:"target1"`
	Target2       float64         `json:"target2"`
	StopLoss      float64         `json:"stop_loss"`
	RiskReward    float64         `json:"rr_ratio"`
	RSI           float64         `json:"rsi"`
	VolumeRatio   float64         `json:"vol_ratio"`
	Sector        sectors.Sector  `json:"-"`
	SectorLabel   string          `json:"sector"`
	FiltersPassed int             `json:"filters_passed"`
	Filters       map[string]bool `json:"filters"`
}

type SwingFilter struct {
	MinPrice           float64 `yaml:"min_price" json:"min_price"`
	MaxPrice           float64 `yaml:"max_price" json:"max_price"`
	MinRSI             float64 `yaml:"min_rsi" json:"min_rsi"`
	MaxRSI             float64 `yaml:"max_rsi" json:"max_rsi"`
	MinVolumeRatio     float64 `yaml:"min_volume_ratio" json:"min_volume_ratio"`
	MinRiskReward      float64 `yaml:"min_rr" json:"min_rr"`
	TrendingRiskReward float64 `yaml:"trending_min_rr" json:"trending_min_rr"` // relaxed bar for trending sectors
	MinFiltersPassed   int     `yaml:"min_filters" json:"min_filters"`

	Target1ATR  float64 `yaml:"target1_atr" json:"target1_atr"`
	Target2ATR  float64 `yaml:"target2_atr" json:"target2_atr"`
	StopLossATR float64 `yaml:"stop_loss_atr" json:"stop_loss_atr"`
}

func NewSwingFilter() *SwingFilter {
	return &SwingFilter{
		MinPrice:           50,
		MaxPrice:           2000,
		MinRSI:             40,
		MaxRSI:             65,
		MinVolumeRatio:     1.5,
		MinRiskReward:      2.0,
		TrendingRiskReward: 1.8,
		MinFiltersPassed:   4,
		Target1ATR:         1.5,
		Target2ATR:         2.0,
		StopLossATR:        1.0,
	}
}

// Assess builds the assessment from latest-bar values and evaluates the five filters.
func (f *SwingFilter) Assess(symbol string, price, atr, rsi, volRatio float64, sector sectors.Sector) SwingAssessment {
	a := SwingAssessment{
		Symbol:      symbol,
		Price:       price,
		Target1:     price + f.Target1ATR*atr,
		Target2:     price + f.Target2ATR*atr,
		StopLoss:    price - f.StopLossATR*atr,
		RSI:         rsi,
		VolumeRatio: volRatio,
		Sector:      sector,
		SectorLabel: sector.Label(),
	}

	risk := price - a.StopLoss
	reward := a.Target2 - price
	if risk > 0 {
		a.RiskReward = reward / risk
	}

	a.Filters = map[string]bool{
		FilterPriceRange:     f.MinPrice <= price && price <= f.MaxPrice,
		FilterRSIRange:       f.MinRSI <= rsi && rsi <= f.MaxRSI,
		FilterVolumeOK:       volRatio >= f.MinVolumeRatio,
		FilterRROK:           a.RiskReward >= f.MinRiskReward || (sector.Trending && a.RiskReward >= f.TrendingRiskReward),
		FilterTrendingSector: sector.Trending,
	}
	for _, ok := range a.Filters {
		if ok {
			a.FiltersPassed++
		}
	}
	return a
}

func (f *SwingFilter) Qualified(a SwingAssessment) bool {
	return a.FiltersPassed >= f.MinFiltersPassed
}

// Qualify assesses the latest bar of an indicator-populated series. Below
// MinSwingBars it reports not qualified with an empty filter map.
func (f *SwingFilter) Qualify(s *indicators.Series, classifier *sectors.Classifier) (bool, SwingAssessment) {
	if s.Len() < MinSwingBars {
		return false, SwingAssessment{Symbol: s.Symbol, Filters: map[string]bool{}}
	}
	a := f.Assess(
		s.Symbol,
		s.Latest(indicators.Close),
		s.Latest(indicators.ATR),
		s.Latest(indicators.RSI),
		s.Latest(indicators.VolRatio),
		classifier.Classify(s.Symbol),
	)
	return f.Qualified(a), a
}
