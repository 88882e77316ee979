// Package obs holds the Prometheus metrics for the approval gateway.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ProposalsCreated  *prometheus.CounterVec
	ProposalsResolved *prometheus.CounterVec
	ProposalsExpired  prometheus.Counter
	ActionExecutions  *prometheus.CounterVec

	HTTPInFlight        prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProposalsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fruitctl_proposals_created_total",
			Help: "Proposals created.",
		}, []string{"integration", "action"}),
		ProposalsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fruitctl_proposals_resolved_total",
			Help: "Proposals moved out of pending by a decision.",
		}, []string{"status"}),
		ProposalsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fruitctl_proposals_expired_total",
			Help: "Pending proposals expired by TTL.",
		}),
		ActionExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fruitctl_action_executions_total",
			Help: "Actions executed on approval, by outcome.",
		}, []string{"integration", "action", "outcome"}),

		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ProposalsCreated, m.ProposalsResolved, m.ProposalsExpired, m.ActionExecutions,
			m.HTTPInFlight, m.HTTPRequestsTotal, m.HTTPRequestDuration,
		)
	}
	return m
}
