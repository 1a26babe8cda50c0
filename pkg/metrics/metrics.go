// Package metrics exports Prometheus instrumentation for the analysis
// pipeline and the background job queue.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"matvision-be/pkg/analysis"
)

const namespace = "matvision"

type PipelineMetrics struct {
	stageDuration *prometheus.HistogramVec
	runDuration   *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	jobsInFlight  prometheus.Gauge
	jobsTotal     *prometheus.CounterVec
}

var _ analysis.Recorder = (*PipelineMetrics)(nil)

func New(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)
	return &PipelineMetrics{
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock time spent in each pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "End-to-end analysis duration by mode and outcome.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 180, 240, 300},
		}, []string{"mode", "outcome"}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Analysis runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		jobsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "in_flight",
			Help:      "Background analysis jobs currently processing.",
		}),
		jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "total",
			Help:      "Background analysis jobs by terminal status.",
		}, []string{"status"}),
	}
}

func (m *PipelineMetrics) StageObserved(stage string, elapsed time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *PipelineMetrics) RunCompleted(mode, outcome string, elapsed time.Duration) {
	m.runsTotal.WithLabelValues(mode, outcome).Inc()
	m.runDuration.WithLabelValues(mode, outcome).Observe(elapsed.Seconds())
}

func (m *PipelineMetrics) JobStarted() {
	m.jobsInFlight.Inc()
}

func (m *PipelineMetrics) JobFinished(status string) {
	m.jobsInFlight.Dec()
	m.jobsTotal.WithLabelValues(status).Inc()
}
