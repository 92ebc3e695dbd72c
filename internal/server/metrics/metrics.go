// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "brandforge"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	designs      *prometheus.CounterVec
	designTime   *prometheus.HistogramVec
	creditsSpent *prometheus.CounterVec
	requests     *prometheus.CounterVec
	rateLimited  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		// operation: generate, refine. outcome: ok, degraded or an error kind.
		designs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "designs_total",
			Help:      "Generation and refinement requests by outcome",
		}, []string{"operation", "tier", "outcome"}),
		designTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "design_duration_seconds",
			Help:      "End-to-end generation and refinement latency",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		}, []string{"operation", "tier"}),
		creditsSpent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_spent_total",
			Help:      "Credits charged, by tier",
		}, []string{"tier"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code",
		}, []string{"route", "code"}),
		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

func (m *Metrics) ObserveDesign(operation, tier, outcome string, d time.Duration) {
	m.designs.WithLabelValues(operation, tier, outcome).Inc()
	m.designTime.WithLabelValues(operation, tier).Observe(d.Seconds())
}

func (m *Metrics) AddCreditsSpent(tier string, n int64) {
	if n > 0 {
		m.creditsSpent.WithLabelValues(tier).Add(float64(n))
	}
}

func (m *Metrics) ObserveRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) IncRateLimited() {
	m.rateLimited.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
