package sectors

import "strings"

// TrendingMarker is appended to the display label of trending sectors.
const TrendingMarker = "🔥"

type Sector struct {
	Name     string `json:"name" yaml:"name"`
	Trending bool   `json:"trending" yaml:"trending"`
}

var Others = Sector{Name: "Others"}

func (s Sector) Label() string {
	if s.Trending {
		return s.Name + TrendingMarker
	}
	return s.Name
}

// ParseLabel is the inverse of Label: "Power🔥" is a trending Power sector.
func ParseLabel(label string) Sector {
	label = strings.TrimSpace(label)
	if label == "" {
		return Others
	}
	name := strings.TrimSpace(strings.TrimSuffix(label, TrendingMarker))
	return Sector{Name: name, Trending: name != label}
}

var (
	finance = Sector{Name: "Finance", Trending: true}
	it      = Sector{Name: "IT", Trending: true}
	power   = Sector{Name: "Power", Trending: true}
	psu     = Sector{Name: "PSU", Trending: true}
	pharma  = Sector{Name: "Pharma"}
	fmcg    = Sector{Name: "FMCG"}
	defence = Sector{Name: "Defence", Trending: true}
)

var defaultMapping = map[string]Sector{
	"HDFCBANK": finance, "ICICIBANK": finance, "SBIN": finance, "AXISBANK": finance,
	"KOTAKBANK": finance, "INDUSINDBK": finance, "BAJFINANCE": finance,

	"TCS": it, "INFY": it, "WIPRO": it, "HCLTECH": it, "TECHM": it,

	"NTPC": power, "POWERGRID": power, "COALINDIA": power, "ONGC": power,
	"ADANIPOWER": power, "TATAPOWER": power,

	"SAIL": psu, "BHEL": psu, "GAIL": psu, "IOC": psu, "BPCL": psu,

	"SUNPHARMA": pharma, "DRREDDY": pharma, "CIPLA": pharma, "DIVISLAB": pharma,

	"HINDUNILVR": fmcg, "ITC": fmcg, "NESTLEIND": fmcg, "BRITANNIA": fmcg,

	"HAL": defence, "BEL": defence, "BEML": defence,
}

// Classifier is a read-only symbol to sector lookup, safe for concurrent use.
type Classifier struct {
	bySymbol map[string]Sector
}

func NewClassifier(mapping map[string]Sector) *Classifier {
	c := &Classifier{bySymbol: make(map[string]Sector, len(mapping))}
	for symbol, sector := range mapping {
		c.bySymbol[normalize(symbol)] = sector
	}
	return c
}

func DefaultClassifier() *Classifier {
	return NewClassifier(defaultMapping)
}

// WithOverrides returns a classifier where labelled overrides ("SYMBOL" ->
// "Sector🔥") replace or extend the receiver's mapping.
func (c *Classifier) WithOverrides(labels map[string]string) *Classifier {
	merged := make(map[string]Sector, len(c.bySymbol)+len(labels))
	for symbol, sector := range c.bySymbol {
		merged[symbol] = sector
	}
	for symbol, label := range labels {
		merged[normalize(symbol)] = ParseLabel(label)
	}
	return &Classifier{bySymbol: merged}
}

// Classify returns Others for unknown symbols.
func (c *Classifier) Classify(symbol string) Sector {
	if c == nil {
		return Others
	}
	if sector, ok := c.bySymbol[normalize(symbol)]; ok {
		return sector
	}
	return Others
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
