// Package metrics holds the Prometheus instruments for identity and stream
// operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"raiap/internal/domain"
)

// Metrics tracks anchor appends, verification outcomes and key evolution.
type Metrics struct {
	AnchorsAppended      prometheus.Counter
	AppendConflicts      prometheus.Counter
	VerifyFailures       *prometheus.CounterVec
	VerifyDuration       prometheus.Histogram
	ForksDetected        prometheus.Counter
	Rotations            prometheus.Counter
	Recoveries           prometheus.Counter
	RecoveryFailures     *prometheus.CounterVec
	RecoverySharesIssued prometheus.Counter
}

// New registers every instrument on reg. A nil reg uses a private registry
// so repeated construction never panics on duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		AnchorsAppended: f.NewCounter(prometheus.CounterOpts{
			Name: "raiap_anchors_appended_total",
			Help: "Anchors appended and persisted",
		}),
		AppendConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "raiap_append_conflicts_total",
			Help: "Appends refused because the stream head moved",
		}),
		VerifyFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "raiap_verify_failures_total",
			Help: "Stream verification failures by error kind",
		}, []string{"kind"}),
		VerifyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "raiap_verify_duration_seconds",
			Help:    "Duration of full stream verification",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		ForksDetected: f.NewCounter(prometheus.CounterOpts{
			Name: "raiap_forks_detected_total",
			Help: "Equivocating stream pairs detected",
		}),
		Rotations: f.NewCounter(prometheus.CounterOpts{
			Name: "raiap_generation_rotations_total",
			Help: "Voluntary operational key rotations",
		}),
		Recoveries: f.NewCounter(prometheus.CounterOpts{
			Name: "raiap_generation_recoveries_total",
			Help: "Threshold recoveries that installed a new generation",
		}),
		RecoveryFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "raiap_recovery_failures_total",
			Help: "Failed recoveries by error kind",
		}, []string{"kind"}),
		RecoverySharesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "raiap_recovery_shares_issued_total",
			Help: "Recovery shares handed out",
		}),
	}
}

// ObserveVerify records a verification outcome.
func (m *Metrics) ObserveVerify(start time.Time, err error) {
	m.VerifyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.VerifyFailures.WithLabelValues(domain.KindOf(err).String()).Inc()
	}
}

// ObserveRecoveryFailure counts a failed recovery by kind.
func (m *Metrics) ObserveRecoveryFailure(err error) {
	m.RecoveryFailures.WithLabelValues(domain.KindOf(err).String()).Inc()
}
