// Package metrics collects and exposes Prometheus metrics for the auth server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder is the metrics interface used by the HTTP layer and the OAuth broker.
type Recorder interface {
	RecordOperation(operation, outcome string)
	RecordOAuthExchange(provider string, d time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	operations    *prometheus.CounterVec
	oauthExchange *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verixa_auth_operations_total",
			Help: "Authentication operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		oauthExchange: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verixa_oauth_exchange_seconds",
			Help:    "Duration of the provider authorization code exchange, failed ones included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}

	reg.MustRegister(c.operations, c.oauthExchange)
	return c
}

func (c *Collector) RecordOperation(operation, outcome string) {
	c.operations.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordOAuthExchange(provider string, d time.Duration) {
	c.oauthExchange.WithLabelValues(provider).Observe(d.Seconds())
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordOperation(string, string)            {}
func (Nop) RecordOAuthExchange(string, time.Duration) {}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
