package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	candlesServed  *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartfeed_cache_hits_total",
				Help: "Chart requests served from a fresh cache entry",
			},
			[]string{"timeframe"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartfeed_cache_misses_total",
				Help: "Chart requests that required or joined an upstream refresh",
			},
			[]string{"timeframe"},
		),
		upstreamErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartfeed_upstream_errors_total",
				Help: "Upstream fetch failures by kind",
			},
			[]string{"kind"},
		),
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chartfeed_upstream_fetch_duration_seconds",
				Help:    "Duration of upstream market_chart fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"timeframe"},
		),
		candlesServed: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chartfeed_candles_served",
				Help: "Number of candles in the last chart served per timeframe",
			},
			[]string{"timeframe"},
		),
	}
}

// RecordCacheHit records a fresh-cache chart response.
func (r *Recorder) RecordCacheHit(timeframe string) {
	r.cacheHits.WithLabelValues(timeframe).Inc()
}

// RecordCacheMiss records a chart response that went through a refresh flight.
func (r *Recorder) RecordCacheMiss(timeframe string) {
	r.cacheMisses.WithLabelValues(timeframe).Inc()
}

// RecordUpstreamError records an upstream failure by kind.
func (r *Recorder) RecordUpstreamError(kind string) {
	r.upstreamErrors.WithLabelValues(kind).Inc()
}

// RecordFetchDuration records one upstream fetch duration in seconds.
func (r *Recorder) RecordFetchDuration(timeframe string, seconds float64) {
	r.fetchDuration.WithLabelValues(timeframe).Observe(seconds)
}

// RecordCandlesServed records the candle count of the last served chart.
func (r *Recorder) RecordCandlesServed(timeframe string, count int) {
	r.candlesServed.WithLabelValues(timeframe).Set(float64(count))
}
