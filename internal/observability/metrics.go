package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// conversion pipeline.
type Metrics struct {
	RowsRead    *prometheus.CounterVec // labels: source={tide,rainfall}
	RowsSkipped *prometheus.CounterVec // labels: source={tide,rainfall}
	RowsWritten prometheus.Counter
	RunErrors   prometheus.Counter

	FileDuration *prometheus.HistogramVec // labels: source={tide,rainfall}
	RunDuration  prometheus.Histogram
	LastRunTime  prometheus.Gauge
	HighRiskDays prometheus.Gauge
	PipelineRuns prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "rows_read_total",
			Help:      "Total source rows read, by source file kind.",
		}, []string{"source"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "rows_skipped_total",
			Help:      "Total malformed source rows skipped, by source file kind.",
		}, []string{"source"}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "rows_written_total",
			Help:      "Total neighborhood-day rows written to the output table.",
		}),
		RunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "run_errors_total",
			Help:      "Total conversion runs that failed.",
		}),
		FileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "floodrisk",
			Name:      "file_duration_seconds",
			Help:      "Time to read and normalize one source file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floodrisk",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete conversion run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodrisk",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last successful conversion run.",
		}),
		HighRiskDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodrisk",
			Name:      "high_risk_days",
			Help:      "Number of high-band neighborhood days in the last run.",
		}),
		PipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodrisk",
			Name:      "pipeline_runs_total",
			Help:      "Total conversion runs started.",
		}),
	}

	prometheus.MustRegister(
		m.RowsRead,
		m.RowsSkipped,
		m.RowsWritten,
		m.RunErrors,
		m.FileDuration,
		m.RunDuration,
		m.LastRunTime,
		m.HighRiskDays,
		m.PipelineRuns,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsRead:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodrisk", Name: "rows_read_total"}, []string{"source"}),
		RowsSkipped:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodrisk", Name: "rows_skipped_total"}, []string{"source"}),
		RowsWritten:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "floodrisk", Name: "rows_written_total"}),
		RunErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "floodrisk", Name: "run_errors_total"}),
		FileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "floodrisk", Name: "file_duration_seconds"}, []string{"source"}),
		RunDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "floodrisk", Name: "run_duration_seconds"}),
		LastRunTime:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "floodrisk", Name: "last_run_timestamp_seconds"}),
		HighRiskDays: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "floodrisk", Name: "high_risk_days"}),
		PipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "floodrisk", Name: "pipeline_runs_total"}),
	}
}
