package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	io_prometheus_client "github.com/prometheus/client_model/go"
)

// MetricsRegistry holds all Prometheus metrics for the pairs pipeline.
type MetricsRegistry struct {
	PairsEvaluated *prometheus.CounterVec
	PairsSelected  *prometheus.CounterVec
	WindowDuration *prometheus.HistogramVec
	ActiveRuns     prometheus.Gauge
	RunsTotal      *prometheus.CounterVec
}

// NewMetricsRegistry creates and registers the pipeline metrics.
func NewMetricsRegistry() *MetricsRegistry {
	registry := &MetricsRegistry{
		PairsEvaluated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairs_evaluated_total",
				Help: "Candidate pairs screened, by strategy and outcome",
			},
			[]string{"method", "outcome"},
		),

		PairsSelected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairs_selected_total",
				Help: "Pairs passing all selection criteria, by strategy",
			},
			[]string{"method"},
		),

		WindowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairs_window_duration_seconds",
				Help:    "Time to screen one walk-forward window",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method"},
		),

		ActiveRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pairs_active_runs",
				Help: "Walk-forward runs currently executing",
			},
		),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairs_runs_total",
				Help: "Completed walk-forward runs by status",
			},
			[]string{"status"},
		),
	}

	prometheus.MustRegister(
		registry.PairsEvaluated,
		registry.PairsSelected,
		registry.WindowDuration,
		registry.ActiveRuns,
		registry.RunsTotal,
	)

	return registry
}

// RunStarted implements pipeline.Observer.
func (m *MetricsRegistry) RunStarted(runID string) {
	m.ActiveRuns.Inc()
	log.Debug().Str("run_id", runID).Msg("run metrics started")
}

// WindowDone implements pipeline.Observer.
func (m *MetricsRegistry) WindowDone(method string, selected int, elapsed time.Duration) {
	m.PairsSelected.WithLabelValues(method).Add(float64(selected))
	m.WindowDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// PairEvaluated implements pipeline.Observer.
func (m *MetricsRegistry) PairEvaluated(method string, kept bool) {
	outcome := "rejected"
	if kept {
		outcome = "selected"
	}
	m.PairsEvaluated.WithLabelValues(method, outcome).Inc()
}

// RunFinished implements pipeline.Observer.
func (m *MetricsRegistry) RunFinished(runID, status string) {
	m.ActiveRuns.Dec()
	m.RunsTotal.WithLabelValues(status).Inc()
	log.Debug().Str("run_id", runID).Str("status", status).Msg("run metrics finished")
}

// EvaluatedCount reads back the evaluated counter for one method/outcome.
func (m *MetricsRegistry) EvaluatedCount(method, outcome string) float64 {
	var metric io_prometheus_client.Metric
	counter, err := m.PairsEvaluated.GetMetricWithLabelValues(method, outcome)
	if err != nil {
		return 0
	}
	if err := counter.Write(&metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}
