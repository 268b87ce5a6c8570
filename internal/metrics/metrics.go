// Package metrics exposes run results for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the per-run gauges for one symbol.
type Recorder struct {
	Registry *prometheus.Registry
	path     string
	symbol   string

	value       *prometheus.GaugeVec
	bandIndex   *prometheus.GaugeVec
	latestClose *prometheus.GaugeVec
	bars        *prometheus.GaugeVec
	success     *prometheus.GaugeVec
	lastRun     *prometheus.GaugeVec
	duration    *prometheus.GaugeVec
	pages       *prometheus.CounterVec
}

// NewRecorder registers all collectors on a private registry.
// An empty textfilePath keeps metrics in memory only.
func NewRecorder(textfilePath, symbol string) *Recorder {
	labels := []string{"symbol"}
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		path:     textfilePath,
		symbol:   symbol,
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ehr999_value",
			Help: "Latest EHR999 oscillator value",
		}, labels),
		bandIndex: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ehr999_band_index",
			Help: "Index of the classified market band (0 = most undervalued)",
		}, labels),
		latestClose: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ehr999_latest_close",
			Help: "Close price of the latest bar",
		}, labels),
		bars: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ehr999_series_bars",
			Help: "Number of bars in the acquired series",
		}, labels),
		success: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ehr999_last_run_success",
			Help: "1 if the last run wrote a report, 0 otherwise",
		}, labels),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ehr999_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}, labels),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ehr999_run_duration_seconds",
			Help: "Wall time of the last run",
		}, labels),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ehr999_pages_fetched_total",
			Help: "Kline pages fetched from the upstream source",
		}, labels),
	}
	r.Registry.MustRegister(r.value, r.bandIndex, r.latestClose, r.bars, r.success, r.lastRun, r.duration, r.pages)
	return r
}

// ObservePages adds fetched pages to the counter.
func (r *Recorder) ObservePages(n int) {
	r.pages.WithLabelValues(r.symbol).Add(float64(n))
}

// ObserveSuccess records a run that produced a report.
func (r *Recorder) ObserveSuccess(value float64, band int, close float64, bars int, took time.Duration) {
	r.value.WithLabelValues(r.symbol).Set(value)
	r.bandIndex.WithLabelValues(r.symbol).Set(float64(band))
	r.latestClose.WithLabelValues(r.symbol).Set(close)
	r.bars.WithLabelValues(r.symbol).Set(float64(bars))
	r.finish(true, took)
}

// ObserveFailure records a run that ended without a report.
func (r *Recorder) ObserveFailure(took time.Duration) {
	r.finish(false, took)
}

func (r *Recorder) finish(ok bool, took time.Duration) {
	s := 0.0
	if ok {
		s = 1
	}
	r.success.WithLabelValues(r.symbol).Set(s)
	r.lastRun.WithLabelValues(r.symbol).Set(float64(time.Now().Unix()))
	r.duration.WithLabelValues(r.symbol).Set(took.Seconds())
}

// Flush writes the registry to the textfile, if one is configured.
func (r *Recorder) Flush() error {
	if r.path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(r.path, r.Registry)
}
