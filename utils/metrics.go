package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// Every method is safe on a nil receiver.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	portalDuration    prometheus.Histogram
	portalErrors      prometheus.Counter
	breakerState      prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "availability_cache_hits_total",
			Help: "Total result cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "availability_cache_misses_total",
			Help: "Total result cache misses.",
		}),
		portalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_http_duration_seconds",
			Help:    "Histogram of portal HTTP request durations.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20},
		}),
		portalErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_http_errors_total",
			Help: "Total portal HTTP errors encountered.",
		}),
		breakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portal_breaker_state",
			Help: "Portal circuit breaker state (0 closed, 1 open, 2 half-open).",
		}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.cacheHits,
		m.cacheMisses,
		m.portalDuration,
		m.portalErrors,
		m.breakerState,
	)
	return m
}

// Middleware records request counts and durations per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) PortalRequest(d time.Duration, success bool) {
	if m == nil {
		return
	}
	m.portalDuration.Observe(d.Seconds())
	if !success {
		m.portalErrors.Inc()
	}
}

func (m *Metrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.breakerState.Set(float64(state))
}
