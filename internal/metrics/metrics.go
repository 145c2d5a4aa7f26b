// Package metrics exports session events as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verte-zerg/tuistream/internal/stream"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	reg *prometheus.Registry

	judgments   *prometheus.CounterVec
	rollbacks   prometheus.Counter
	checkpoints prometheus.Counter
	sessions    *prometheus.CounterVec
	multiplier  prometheus.Gauge
	remaining   prometheus.Gauge
	delivered   prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		judgments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tuistream_judgments_total",
			Help: "Judged fragments by verdict.",
		}, []string{"verdict", "timeout"}),
		rollbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "tuistream_rollbacks_total",
			Help: "Rollbacks to a checkpoint or the start.",
		}),
		checkpoints: f.NewCounter(prometheus.CounterOpts{
			Name: "tuistream_checkpoints_total",
			Help: "Checkpoints created.",
		}),
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tuistream_sessions_total",
			Help: "Finished sessions by outcome.",
		}, []string{"outcome"}),
		multiplier: f.NewGauge(prometheus.GaugeOpts{
			Name: "tuistream_ramp_multiplier",
			Help: "Current pace multiplier.",
		}),
		remaining: f.NewGauge(prometheus.GaugeOpts{
			Name: "tuistream_time_remaining_seconds",
			Help: "Time left in the session budget.",
		}),
		delivered: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tuistream_delivered_words",
			Help:    "Words delivered per finished session.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 8),
		}),
	}
}

// Observe records an engine event. It satisfies stream.Observer.
func (m *Metrics) Observe(ev stream.Event) {
	switch ev.Kind {
	case stream.EventJudged:
		timeout := "false"
		if ev.Outcome.Timeout {
			timeout = "true"
		}
		m.judgments.WithLabelValues(ev.Outcome.Verdict.String(), timeout).Inc()
	case stream.EventRollback:
		m.rollbacks.Inc()
	case stream.EventCheckpoint:
		m.checkpoints.Inc()
	case stream.EventRamp:
		m.multiplier.Set(ev.Multiplier)
	case stream.EventTime:
		m.remaining.Set(ev.Remaining.Seconds())
	case stream.EventComplete:
		m.sessions.WithLabelValues(outcome(ev.Result)).Inc()
		m.delivered.Observe(float64(ev.Result.Delivered))
		m.remaining.Set(0)
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func outcome(r stream.Result) string {
	switch {
	case r.Completed:
		return "completed"
	case r.TimedOut:
		return "timed_out"
	default:
		return "ended"
	}
}
