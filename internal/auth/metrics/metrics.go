// Package metrics holds the Prometheus instruments for auth outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeDenied   = "denied"
	OutcomeError    = "error"
)

// Auth counts registrations and logins by outcome and times secret hashing.
// A nil *Auth records nothing so callers never need to check.
type Auth struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	hashDuration  prometheus.Histogram
}

func New() *Auth {
	return &Auth{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credauth_registrations_total",
			Help: "Total number of registration attempts by outcome",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credauth_logins_total",
			Help: "Total number of login attempts by outcome",
		}, []string{"outcome"}),
		hashDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "credauth_secret_hash_seconds",
			Help:    "Histogram of secret hashing and verification latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Register adds every instrument to reg.
func (m *Auth) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.registrations, m.logins, m.hashDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Auth) RecordRegistration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *Auth) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// ObserveHash records how long one hash or verify took.
func (m *Auth) ObserveHash(d time.Duration) {
	if m == nil {
		return
	}
	m.hashDuration.Observe(d.Seconds())
}
