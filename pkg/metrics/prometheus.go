package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	rowsMerged     prometheus.Counter
	tickersSkipped *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	gridPoints     *prometheus.CounterVec
	bestScore      *prometheus.GaugeVec
	errorsTotal    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		rowsMerged: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trendlab_rows_merged_total",
				Help: "Total feature rows added by incremental merges",
			},
		),
		tickersSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlab_tickers_skipped_total",
				Help: "Tickers skipped during merge, by ticker",
			},
			[]string{"ticker"},
		),
		stageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trendlab_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"stage"},
		),
		gridPoints: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlab_grid_points_total",
				Help: "Hyperparameter grid points evaluated, by result",
			},
			[]string{"result"},
		),
		bestScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trendlab_best_score",
				Help: "Best cross-validated score of the last search",
			},
			[]string{"metric"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendlab_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordRowsMerged records rows added by a merge pass.
func (r *Recorder) RecordRowsMerged(n int) {
	r.rowsMerged.Add(float64(n))
}

// RecordTickerSkipped records a ticker skipped during merge.
func (r *Recorder) RecordTickerSkipped(ticker string) {
	r.tickersSkipped.WithLabelValues(ticker).Inc()
}

// RecordStageDuration records how long a pipeline stage took.
func (r *Recorder) RecordStageDuration(stage string, seconds float64) {
	r.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordGridPoint records a grid point outcome ("ok" or "failed").
func (r *Recorder) RecordGridPoint(result string) {
	r.gridPoints.WithLabelValues(result).Inc()
}

// RecordBestScore records the winning cross-validated score.
func (r *Recorder) RecordBestScore(metric string, score float64) {
	r.bestScore.WithLabelValues(metric).Set(score)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
