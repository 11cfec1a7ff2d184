package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes Prometheus metrics for the scan pipeline.
type Recorder struct {
	scansTotal   *prometheus.CounterVec
	fetchErrors  *prometheus.CounterVec
	scanDuration prometheus.Histogram
	survivors    *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scansTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_scans_total",
				Help: "Total number of scans by outcome",
			},
			[]string{"universe", "outcome"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_fetch_errors_total",
				Help: "Total number of per-ticker fetch failures by kind",
			},
			[]string{"kind"},
		),
		scanDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "screener_scan_duration_seconds",
				Help:    "Duration of full universe scans in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		survivors: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "screener_survivors",
				Help: "Candidates surviving the filter pipeline in the last scan",
			},
			[]string{"universe"},
		),
	}
}

// RecordScan records a completed scan.
func (r *Recorder) RecordScan(universe, outcome string, seconds float64) {
	r.scansTotal.WithLabelValues(universe, outcome).Inc()
	r.scanDuration.Observe(seconds)
}

// RecordFetchError records a per-ticker fetch failure.
func (r *Recorder) RecordFetchError(kind string) {
	r.fetchErrors.WithLabelValues(kind).Inc()
}

// RecordSurvivors records the survivor count of the last scan.
func (r *Recorder) RecordSurvivors(universe string, count int) {
	r.survivors.WithLabelValues(universe).Set(float64(count))
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
