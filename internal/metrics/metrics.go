package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ewaste"

// Manager holds the service's Prometheus collectors on a private registry
type Manager struct {
	Registry *prometheus.Registry

	ScrapRunsTotal      *prometheus.CounterVec
	ScrapFlaggedTotal   prometheus.Counter
	ScrapRunDuration    prometheus.Histogram
	PickupsScheduled    prometheus.Counter
	PickupsCompleted    prometheus.Counter
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewManager creates and registers all collectors
func NewManager() *Manager {
	m := &Manager{
		Registry: prometheus.NewRegistry(),
		ScrapRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrap_runs_total",
			Help:      "Scrap classification runs by outcome.",
		}, []string{"outcome"}),
		ScrapFlaggedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrap_listings_flagged_total",
			Help:      "Listings moved to scrap by the classification job.",
		}),
		ScrapRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrap_run_duration_seconds",
			Help:      "Duration of scrap classification runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		PickupsScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pickups_scheduled_total",
			Help:      "Pickup records created.",
		}),
		PickupsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pickups_completed_total",
			Help:      "Pickups marked completed.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.Registry.MustRegister(
		m.ScrapRunsTotal,
		m.ScrapFlaggedTotal,
		m.ScrapRunDuration,
		m.PickupsScheduled,
		m.PickupsCompleted,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveScrapRun records one scheduled classification run
func (m *Manager) ObserveScrapRun(outcome string, flagged int64, duration time.Duration) {
	m.ScrapRunsTotal.WithLabelValues(outcome).Inc()
	m.ScrapFlaggedTotal.Add(float64(flagged))
	m.ScrapRunDuration.Observe(duration.Seconds())
}

// PickupsCreated counts a scheduled batch
func (m *Manager) PickupsCreated(n int) {
	m.PickupsScheduled.Add(float64(n))
}

// PickupCompleted counts a completion
func (m *Manager) PickupCompleted() {
	m.PickupsCompleted.Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per matched route
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
