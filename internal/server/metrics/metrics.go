// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded on auth requests.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics bundles the service counters and the registry they live on.
type Metrics struct {
	registry         *prometheus.Registry
	AuthRequests     *prometheus.CounterVec
	ResetCodesIssued prometheus.Counter
}

// New creates a private registry with the Go and process collectors and
// registers the service counters on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		AuthRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_auth_requests_total",
				Help: "Total number of auth requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		ResetCodesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gophauth_reset_codes_issued_total",
			Help: "Total number of password reset codes issued",
		}),
	}

	reg.MustRegister(m.AuthRequests)
	reg.MustRegister(m.ResetCodesIssued)

	return m
}

// ObserveAuth counts one request. A nil receiver is a no-op.
func (m *Metrics) ObserveAuth(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthRequests.WithLabelValues(operation, outcome).Inc()
}

// ResetCodeIssued counts one issued code. A nil receiver is a no-op.
func (m *Metrics) ResetCodeIssued() {
	if m == nil {
		return
	}
	m.ResetCodesIssued.Inc()
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
