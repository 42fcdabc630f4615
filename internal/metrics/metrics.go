// Package metrics exposes Prometheus instruments for simulation runs, pump
// decisions and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "punogaria"

// Metrics holds the collectors on a private registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	iterations     prometheus.Counter
	runs           *prometheus.CounterVec
	decisions      *prometheus.CounterVec
	fallbacks      prometheus.Counter
	skyConditions  *prometheus.CounterVec
	manualCommands *prometheus.CounterVec
	activeRuns     prometheus.Gauge

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_iterations_total",
			Help:      "Total simulation iterations executed.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_runs_total",
			Help:      "Simulation runs by outcome.",
		}, []string{"outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pump_decisions_total",
			Help:      "Pump decisions by state and reason.",
		}, []string{"state", "reason"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_fallbacks_total",
			Help:      "Readings synthesised because the sensor gateway was unreachable.",
		}),
		skyConditions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sky_classifications_total",
			Help:      "Sky classifications by condition.",
		}, []string{"condition"}),
		manualCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manual_commands_total",
			Help:      "Manual pump commands by requested state and whether they changed the pump.",
		}, []string{"state", "changed"}),
		activeRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulation_active_runs",
			Help:      "Simulation runs currently in progress.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.iterations,
		m.runs,
		m.decisions,
		m.fallbacks,
		m.skyConditions,
		m.manualCommands,
		m.activeRuns,
		m.httpRequestsTotal,
		m.httpDuration,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request count and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
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

func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.activeRuns.Inc()
}

// RunFinished records the outcome ("completed", "cancelled" or "failed").
func (m *Metrics) RunFinished(outcome string) {
	if m == nil {
		return
	}
	m.activeRuns.Dec()
	m.runs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Iteration() {
	if m == nil {
		return
	}
	m.iterations.Inc()
}

func (m *Metrics) Decision(state, reason string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(state, reason).Inc()
}

func (m *Metrics) SensorFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

func (m *Metrics) SkyCondition(condition string) {
	if m == nil {
		return
	}
	m.skyConditions.WithLabelValues(condition).Inc()
}

func (m *Metrics) ManualCommand(state string, changed bool) {
	if m == nil {
		return
	}
	m.manualCommands.WithLabelValues(state, strconv.FormatBool(changed)).Inc()
}
