package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	stageUpdates  *prometheus.CounterVec
	billsCreated  prometheus.Counter
	notifications *prometheus.CounterVec
	registry      *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tailor_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tailor_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		stageUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tailor_workflow_stage_updates_total",
			Help: "Workflow stage transitions by stage and new status.",
		}, []string{"stage", "status"}),
		billsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "tailor_bills_created_total",
			Help: "Bills created.",
		}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tailor_notifications_total",
			Help: "Customer notifications by result.",
		}, []string{"result"}),
	}
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) StageUpdated(stage, status string) {
	m.stageUpdates.WithLabelValues(stage, status).Inc()
}

func (m *Metrics) BillCreated() {
	m.billsCreated.Inc()
}

func (m *Metrics) Notification(ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	m.notifications.WithLabelValues(result).Inc()
}
