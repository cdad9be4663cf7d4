package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the tapevm collectors.
type Metrics struct {
	registry *prometheus.Registry

	Invocations *prometheus.CounterVec
	Faults      *prometheus.CounterVec
	CacheHits   prometheus.Counter
	Steps       prometheus.Histogram
	Duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapevm_invocations_total",
				Help: "Invocations by how they ended",
			},
			[]string{"outcome"},
		),
		Faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapevm_faults_total",
				Help: "Faulted invocations by error kind",
			},
			[]string{"kind"},
		),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tapevm_cache_hits_total",
			Help: "Invocations served from the result cache",
		}),
		Steps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tapevm_steps",
			Help:    "Instructions executed per invocation",
			Buckets: prometheus.ExponentialBuckets(1, 10, 9),
		}),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tapevm_invocation_duration_seconds",
				Help:    "Wall time of an invocation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.Invocations, m.Faults, m.CacheHits, m.Steps, m.Duration)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks records every terminal event. Start and resume events are not counted.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	done := func(outcome string) func(context.Context, *domain.Event) {
		return func(_ context.Context, e *domain.Event) {
			m.Invocations.WithLabelValues(outcome).Inc()
			m.Duration.WithLabelValues(outcome).Observe(e.Duration.Seconds())
			if e.Cached {
				m.CacheHits.Inc()
				return
			}
			m.Steps.Observe(float64(e.Steps))
		}
	}

	return domain.LifecycleHooks{
		OnFinish:  done(string(domain.OutcomeFinished)),
		OnSuspend: done(string(domain.OutcomeSuspended)),
		OnReject:  done(string(domain.OutcomeInputRejected)),
		OnFault: func(ctx context.Context, e *domain.Event) {
			done("fault")(ctx, e)
			m.Faults.WithLabelValues(domain.Kind(e.Err)).Inc()
		},
	}
}
