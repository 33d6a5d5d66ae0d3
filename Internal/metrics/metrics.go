package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the screener's Prometheus metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	ScanUnits     *prometheus.CounterVec
	ScanQualified *prometheus.GaugeVec
	ScanDuration  *prometheus.HistogramVec
	ScansTotal    *prometheus.CounterVec
	ActiveScans   prometheus.Gauge

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheErrors prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		ScanUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "niftyscreener_scan_units_total",
				Help: "Per-symbol scan units by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),

		ScanQualified: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "niftyscreener_scan_qualified",
				Help: "Qualifying symbols found by the most recent scan",
			},
			[]string{"mode"},
		),

		ScanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "niftyscreener_scan_duration_seconds",
				Help:    "Wall-clock duration of a full scan",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"mode"},
		),

		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "niftyscreener_scans_total",
				Help: "Completed scans by mode",
			},
			[]string{"mode"},
		),

		ActiveScans: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "niftyscreener_active_scans",
				Help: "Scans currently in flight",
			},
		),

		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niftyscreener_bar_cache_hits_total",
			Help: "Bar cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niftyscreener_bar_cache_misses_total",
			Help: "Bar cache misses",
		}),
		CacheErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niftyscreener_bar_cache_errors_total",
			Help: "Bar cache operations that failed and fell through to the provider",
		}),
	}

	c.registry.MustRegister(
		c.ScanUnits, c.ScanQualified, c.ScanDuration, c.ScansTotal, c.ActiveScans,
		c.CacheHits, c.CacheMisses, c.CacheErrors,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ScanStarted(mode string) {
	c.ActiveScans.Inc()
}

func (c *Collector) UnitCompleted(mode, outcome string) {
	c.ScanUnits.WithLabelValues(mode, outcome).Inc()
}

func (c *Collector) ScanCompleted(mode string, qualified int, elapsed time.Duration) {
	c.ActiveScans.Dec()
	c.ScansTotal.WithLabelValues(mode).Inc()
	c.ScanQualified.WithLabelValues(mode).Set(float64(qualified))
	c.ScanDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func (c *Collector) CacheHit()   { c.CacheHits.Inc() }
func (c *Collector) CacheMiss()  { c.CacheMisses.Inc() }
func (c *Collector) CacheError() { c.CacheErrors.Inc() }
