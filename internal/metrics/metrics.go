// Package metrics exports Prometheus counters for HTTP traffic and the
// business events of the platform.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. A nil *Metrics is valid and records
// nothing, which keeps services usable without instrumentation.
type Metrics struct {
	reg *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SubscriptionsPurchased *prometheus.CounterVec
	SubscriptionsCancelled prometheus.Counter
	VideosModerated        *prometheus.CounterVec
	VideosSubmitted        prometheus.Counter
	Payments               *prometheus.CounterVec
}

// New registers all collectors on a private registry.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		SubscriptionsPurchased: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_purchased_total",
			Help:      "Subscriptions purchased by plan",
		}, []string{"plan"}),
		SubscriptionsCancelled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_cancelled_total",
			Help:      "Subscriptions cancelled",
		}),
		VideosModerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "videos_moderated_total",
			Help:      "Moderation decisions by outcome",
		}, []string{"outcome"}),
		VideosSubmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "videos_submitted_total",
			Help:      "Videos uploaded for moderation",
		}),
		Payments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Simulated payments by method and status",
		}, []string{"method", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Middleware records count and latency per route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Metrics) SubscriptionPurchased(plan string) {
	if m != nil {
		m.SubscriptionsPurchased.WithLabelValues(plan).Inc()
	}
}

func (m *Metrics) SubscriptionCancelled() {
	if m != nil {
		m.SubscriptionsCancelled.Inc()
	}
}

func (m *Metrics) VideoSubmitted() {
	if m != nil {
		m.VideosSubmitted.Inc()
	}
}

func (m *Metrics) VideoModerated(outcome string) {
	if m != nil {
		m.VideosModerated.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Payment(method, status string) {
	if m != nil {
		m.Payments.WithLabelValues(method, status).Inc()
	}
}
