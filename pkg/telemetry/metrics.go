// Package telemetry exposes console activity as Prometheus metrics.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nucleus-console/pkg/engine"
)

// Metrics implements engine.Recorder on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	commands *prometheus.CounterVec
	runs     *prometheus.CounterVec
	rejected *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ engine.Recorder = (*Metrics)(nil)

// NewMetrics creates and registers the console collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nucleus_commands_total",
				Help: "Console commands handled, by command and outcome.",
			},
			[]string{"command", "outcome"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nucleus_pipeline_runs_total",
				Help: "Remote actions completed, by family and outcome.",
			},
			[]string{"family", "outcome"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nucleus_pipeline_rejected_total",
				Help: "Remote actions rejected because another action was running.",
			},
			[]string{"family"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nucleus_pipeline_duration_seconds",
				Help:    "Wall time of remote actions, collaborator call and pacing included.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"family"},
		),
	}
	m.Registry.MustRegister(m.commands, m.runs, m.rejected, m.duration)
	return m
}

func (m *Metrics) CommandHandled(command, outcome string) {
	m.commands.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) PipelineFinished(family, outcome string, elapsed time.Duration) {
	m.runs.WithLabelValues(family, outcome).Inc()
	m.duration.WithLabelValues(family).Observe(elapsed.Seconds())
}

func (m *Metrics) PipelineRejected(family string) {
	m.rejected.WithLabelValues(family).Inc()
}
