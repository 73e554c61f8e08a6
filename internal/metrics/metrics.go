// Package metrics holds the Prometheus collectors for the weather screen.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request kinds and outcomes used as label values.
const (
	KindSearch   = "search"
	KindForecast = "forecast"

	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeStale = "stale"
)

type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	persistFailures prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wthr",
			Name:      "requests_total",
			Help:      "Weather provider requests issued by the screen, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wthr",
			Name:      "persist_failures_total",
			Help:      "Failed writes of the last selected city.",
		}),
	}
	reg.MustRegister(
		m.requests,
		m.persistFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest counts one completed request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(kind, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObservePersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// Requests returns the counter for one kind/outcome pair.
func (m *Metrics) Requests(kind, outcome string) prometheus.Counter {
	return m.requests.WithLabelValues(kind, outcome)
}

func (m *Metrics) PersistFailures() prometheus.Counter {
	return m.persistFailures
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
