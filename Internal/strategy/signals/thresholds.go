package signals

// Thresholds are the operator-supplied composite scoring limits.
type Thresholds struct {
	ADXMin        float64 `yaml:"adx_min" json:"adx_min"`
	RSIMin        float64 `yaml:"rsi_min" json:"rsi_min"`
	RSIMax        float64 `yaml:"rsi_max" json:"rsi_max"`
	StochRSIMax   float64 `yaml:"stoch_rsi_max" json:"stoch_rsi_max"`
	VolumeMin     float64 `yaml:"volume_min" json:"volume_min"`
	HighThreshold float64 `yaml:"high_threshold" json:"high_threshold"` // fraction of the 52-week high
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ADXMin:        25.0,
		RSIMin:        30,
		RSIMax:        70,
		StochRSIMax:   30,
		VolumeMin:     100000,
		HighThreshold: 0.95,
	}
}
