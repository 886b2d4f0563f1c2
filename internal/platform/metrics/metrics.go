package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. Construct once in
// main; services treat a nil *Metrics as "metrics disabled" so tests can skip
// global registration.
type Metrics struct {
	KeysRegistered        prometheus.Counter
	ValidationCodesIssued prometheus.Counter
	ChallengesIssued      prometheus.Counter
	ChallengesEvicted     prometheus.Counter
	ChallengesExpired     prometheus.Counter
	Authorizations        *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		KeysRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "biokey_keys_registered_total",
			Help: "Total number of public keys registered",
		}),
		ValidationCodesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "biokey_validation_codes_issued_total",
			Help: "Total number of validation codes issued",
		}),
		ChallengesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "biokey_challenges_issued_total",
			Help: "Total number of biometric challenges issued",
		}),
		ChallengesEvicted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "biokey_challenges_evicted_total",
			Help: "Total number of challenges evicted by the expiry timer",
		}),
		ChallengesExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "biokey_challenges_expired_total",
			Help: "Total number of challenges consumed after their deadline",
		}),
		Authorizations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "biokey_authorizations_total",
			Help: "Transaction authorization outcomes by proof type",
		}, []string{"proof", "outcome"}),
	}
}

func (m *Metrics) IncKeysRegistered() {
	if m == nil {
		return
	}
	m.KeysRegistered.Inc()
}

func (m *Metrics) IncValidationCodesIssued() {
	if m == nil {
		return
	}
	m.ValidationCodesIssued.Inc()
}

func (m *Metrics) IncChallengesIssued() {
	if m == nil {
		return
	}
	m.ChallengesIssued.Inc()
}

func (m *Metrics) IncChallengesEvicted() {
	if m == nil {
		return
	}
	m.ChallengesEvicted.Inc()
}

func (m *Metrics) IncChallengesExpired() {
	if m == nil {
		return
	}
	m.ChallengesExpired.Inc()
}

func (m *Metrics) IncAuthorization(proof, outcome string) {
	if m == nil {
		return
	}
	m.Authorizations.WithLabelValues(proof, outcome).Inc()
}
