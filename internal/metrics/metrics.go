// Package metrics owns the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	leadsCreated  *prometheus.CounterVec
	importRows    *prometheus.CounterVec
	callsLogged   *prometheus.CounterVec
	scoreAccounts prometheus.Counter
}

// New registers collectors on a fresh registry so tests can build as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workbooster_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "workbooster_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		leadsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workbooster_leads_created_total",
			Help: "Leads created, by origin (api or import).",
		}, []string{"origin"}),
		importRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workbooster_import_rows_total",
			Help: "Lead import rows by result.",
		}, []string{"result"}),
		callsLogged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workbooster_telecalls_logged_total",
			Help: "Telecall logs by outcome.",
		}, []string{"outcome"}),
		scoreAccounts: factory.NewCounter(prometheus.CounterOpts{
			Name: "workbooster_score_recomputed_accounts_total",
			Help: "Accounts whose completion score changed during the nightly job.",
		}),
	}
}

func (m *Metrics) LeadCreated(origin string) {
	if m == nil {
		return
	}
	m.leadsCreated.WithLabelValues(origin).Inc()
}

func (m *Metrics) ImportFinished(imported, failed int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("imported").Add(float64(imported))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) CallLogged(outcome string) {
	if m == nil {
		return
	}
	m.callsLogged.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ScoresUpdated(n int) {
	if m == nil {
		return
	}
	m.scoreAccounts.Add(float64(n))
}

// Middleware records request count and latency using the matched route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
