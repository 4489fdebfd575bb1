package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the provisioning workflow.
type Metrics struct {
	RegistrationsTotal   *prometheus.CounterVec
	RegistrationFailures *prometheus.CounterVec
	DuplicatesRejected   *prometheus.CounterVec
	IdentitiesCreated    prometheus.Counter
	RetryAttempts        prometheus.Counter
	ProvisioningLatency  *prometheus.HistogramVec
	PropagationLatency   prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "member_gateway_registrations_total",
			Help: "Completed registrations, labeled by variant and action (created/existing)",
		}, []string{"variant", "action"}),
		RegistrationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "member_gateway_registration_failures_total",
			Help: "Terminal registration failures, labeled by error code",
		}, []string{"code"}),
		DuplicatesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "member_gateway_duplicates_rejected_total",
			Help: "Registrations rejected by the duplicate guard, labeled by match kind",
		}, []string{"kind"}),
		IdentitiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "member_gateway_identities_created_total",
			Help: "Identities created in the identity subsystem",
		}),
		RetryAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "member_gateway_retry_attempts_total",
			Help: "Retries consumed across all submissions",
		}),
		ProvisioningLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "member_gateway_provisioning_seconds",
			Help:    "End-to-end provisioning latency per variant",
			Buckets: []float64{0.5, 1, 2, 3, 5, 8, 13, 21},
		}, []string{"variant"}),
		// Observes how long after identity creation the registrar first
		// succeeded. Informs tuning of the propagation delay, which is an
		// empirical constant with no documented upper bound.
		PropagationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "member_gateway_identity_propagation_seconds",
			Help:    "Time from identity creation to first successful registrar call",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
	}
}
