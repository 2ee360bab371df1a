package observability

import (
	"context"

	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the analyzer hooks.
type Metrics struct {
	TrialsBuilt         *prometheus.CounterVec
	TrialsRejected      prometheus.Counter
	TrialsMeasured      prometheus.Counter
	ExcludedFixations   prometheus.Counter
	SaccadesPerTrial    prometheus.Histogram
	RegressionsPerTrial prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them through promhttp.Handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TrialsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sideeye_trials_built_total",
				Help: "Total number of trials built, by item",
			},
			[]string{"item"},
		),
		TrialsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sideeye_trials_rejected_total",
			Help: "Total number of trial build requests rejected as invalid",
		}),
		TrialsMeasured: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sideeye_trials_measured_total",
			Help: "Total number of measure passes applied to trials",
		}),
		ExcludedFixations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sideeye_excluded_fixations_total",
			Help: "Total number of excluded fixations seen while building trials",
		}),
		SaccadesPerTrial: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sideeye_trial_saccades",
			Help:    "Number of reconstructed saccades per trial",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		RegressionsPerTrial: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sideeye_trial_regressions",
			Help:    "Number of regressive saccades per trial",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
	}
	reg.MustRegister(
		m.TrialsBuilt,
		m.TrialsRejected,
		m.TrialsMeasured,
		m.ExcludedFixations,
		m.SaccadesPerTrial,
		m.RegressionsPerTrial,
	)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrialBuilt: func(_ context.Context, e *domain.TrialEvent) {
			m.TrialsBuilt.WithLabelValues(e.ItemNumber).Inc()
			m.ExcludedFixations.Add(float64(e.Excluded))
			m.SaccadesPerTrial.Observe(float64(e.Saccades))
			if e.Trial != nil {
				m.RegressionsPerTrial.Observe(float64(e.Trial.Regressions()))
			}
		},
		OnTrialRejected: func(context.Context, *domain.TrialEvent) {
			m.TrialsRejected.Inc()
		},
		OnTrialMeasured: func(context.Context, *domain.TrialEvent) {
			m.TrialsMeasured.Inc()
		},
	}
}
