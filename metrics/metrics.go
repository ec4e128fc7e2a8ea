// Package metrics counts portal authentication outcomes with Prometheus.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portal_auth"

// Collector holds the outcome counters. A nil *Collector is valid and records nothing.
type Collector struct {
	logins          *prometheus.CounterVec
	passwordChanges *prometheus.CounterVec
	revalidations   *prometheus.CounterVec
}

// NewCollector creates the counters and registers them with reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login submissions by outcome.",
		}, []string{"outcome"}),
		passwordChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_changes_total",
			Help:      "Forced password change submissions by outcome.",
		}, []string{"outcome"}),
		revalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revalidations_total",
			Help:      "Start-up session revalidations by result.",
		}, []string{"result"}),
	}

	for _, cv := range []prometheus.Collector{c.logins, c.passwordChanges, c.revalidations} {
		if err := reg.Register(cv); err != nil {
			return nil, errors.Wrap(err, "[NewCollector] register")
		}
	}
	return c, nil
}

// Login counts one login outcome, e.g. "fresh", "temporary", "rejected"
func (c *Collector) Login(outcome string) {
	if c == nil {
		return
	}
	c.logins.WithLabelValues(outcome).Inc()
}

// PasswordChange counts one password change outcome
func (c *Collector) PasswordChange(outcome string) {
	if c == nil {
		return
	}
	c.passwordChanges.WithLabelValues(outcome).Inc()
}

// Revalidation counts one start-up revalidation result
func (c *Collector) Revalidation(result string) {
	if c == nil {
		return
	}
	c.revalidations.WithLabelValues(result).Inc()
}
