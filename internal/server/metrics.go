package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes recorded by the searches counter.
const (
	outcomeHit      = "hit"
	outcomeEmpty    = "empty"
	outcomeRedirect = "redirect"
	outcomeRejected = "rejected"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	requests       *prometheus.CounterVec
	sessions       prometheus.Gauge
	articles       prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archive",
			Name:      "searches_total",
			Help:      "Keyword searches by scope and outcome.",
		}, []string{"scope", "outcome"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "archive",
			Name:      "search_duration_seconds",
			Help:      "Time spent matching a keyword against the catalog.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"scope"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archive",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "archive",
			Name:      "sessions",
			Help:      "Reader sessions held in memory.",
		}),
		articles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "archive",
			Name:      "articles",
			Help:      "Articles in the served catalog.",
		}),
	}

	m.registry.MustRegister(
		m.searches,
		m.searchDuration,
		m.requests,
		m.sessions,
		m.articles,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
