package credit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for credit decisioning.
type Metrics struct {
	// Decision outcomes by canonical status and source
	DecisionOutcome *prometheus.CounterVec

	// Bureau call latency by operation
	BureauLatency *prometheus.HistogramVec

	// Bureau lookups that degraded the decision, by error category
	DegradedLookups *prometheus.CounterVec

	// Overall RunCheck latency
	RunLatency prometheus.Histogram
}

// NewMetrics registers the credit metrics on reg. A nil reg builds unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DecisionOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reliance_credit_decisions_total",
			Help: "Total credit decisions by status and source",
		}, []string{"status", "source"}),

		BureauLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reliance_credit_bureau_duration_seconds",
			Help:    "Duration of credit bureau calls by operation",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}), // op: "search_debtors", "credit_status"

		DegradedLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reliance_credit_degraded_lookups_total",
			Help: "Bureau lookups that failed and fell back to INSUFFICIENT_DATA",
		}, []string{"op", "category"}),

		RunLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "reliance_credit_run_duration_seconds",
			Help:    "Duration of a full credit check including bureau calls and persistence",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) observeBureau(op string, d time.Duration) {
	if m != nil {
		m.BureauLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}

func (m *Metrics) incDegraded(op, category string) {
	if m != nil {
		m.DegradedLookups.WithLabelValues(op, category).Inc()
	}
}

func (m *Metrics) incOutcome(status, source string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(status, source).Inc()
	}
}

func (m *Metrics) observeRun(d time.Duration) {
	if m != nil {
		m.RunLatency.Observe(d.Seconds())
	}
}
