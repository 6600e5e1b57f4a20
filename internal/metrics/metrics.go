// Package metrics provides Prometheus metrics for UpdateSentry
package metrics

import (
	"net/http"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
	"github.com/aravindh-murugesan/updatesentry-go/internal/remote"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for UpdateSentry
type Metrics struct {
	DecisionsTotal     *prometheus.CounterVec
	FetchErrorsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates the metrics and registers them on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		DecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "updatesentry_decisions_total",
				Help: "Total number of evaluations by resulting tier",
			},
			[]string{"tier"},
		),
		FetchErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "updatesentry_fetch_errors_total",
				Help: "Total number of failed remote fetches",
			},
			[]string{"source", "kind"},
		),
		EvaluationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "updatesentry_evaluation_duration_seconds",
				Help:    "Duration of a full evaluation in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		gatherer: reg,
	}
}

// ObserveDecision records the outcome of one evaluation.
func (m *Metrics) ObserveDecision(tier policy.Tier, duration time.Duration) {
	m.DecisionsTotal.WithLabelValues(tier.String()).Inc()
	m.EvaluationDuration.Observe(duration.Seconds())
}

// ObserveFetchError records a failed fetch. source is "policy" or "store".
func (m *Metrics) ObserveFetchError(source string, err error) {
	m.FetchErrorsTotal.WithLabelValues(source, remote.KindOf(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
