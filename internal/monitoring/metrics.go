package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter
	SignOnsTotal   *prometheus.CounterVec

	// Turn metrics
	TurnsTotal      *prometheus.CounterVec
	TurnDuration    *prometheus.HistogramVec
	ContainedErrors *prometheus.CounterVec

	// Job metrics
	JobsSubmitted prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dk400_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dk400_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		// Session metrics
		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "dk400_sessions_active",
				Help: "Number of active terminal sessions",
			},
		),
		SessionsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dk400_sessions_total",
				Help: "Total number of terminal sessions created",
			},
		),
		SignOnsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dk400_signons_total",
				Help: "Total number of sign-on attempts",
			},
			[]string{"result"},
		),

		// Turn metrics
		TurnsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dk400_turns_total",
				Help: "Total number of terminal turns dispatched",
			},
			[]string{"action"},
		),
		TurnDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dk400_turn_duration_seconds",
				Help:    "Terminal turn duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"action"},
		),
		ContainedErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dk400_contained_errors_total",
				Help: "Total number of handler errors degraded to message frames",
			},
			[]string{"kind"},
		),

		// Job metrics
		JobsSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dk400_jobs_submitted_total",
				Help: "Total number of batch jobs submitted",
			},
		),

		// WebSocket metrics
		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "dk400_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dk400_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "dk400_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTurn records a dispatched terminal turn
func (m *Metrics) RecordTurn(action string, duration time.Duration) {
	m.TurnsTotal.WithLabelValues(action).Inc()
	m.TurnDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordContainedError records a handler error degraded to a message frame
func (m *Metrics) RecordContainedError(kind string) {
	m.ContainedErrors.WithLabelValues(kind).Inc()
}

// RecordSignOn records a sign-on attempt
func (m *Metrics) RecordSignOn(result string) {
	m.SignOnsTotal.WithLabelValues(result).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// SetSessionsActive sets the number of active sessions
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
}

// IncSessionsTotal increments the total sessions counter
func (m *Metrics) IncSessionsTotal() {
	m.SessionsTotal.Inc()
}

// IncJobsSubmitted increments the jobs submitted counter
func (m *Metrics) IncJobsSubmitted() {
	m.JobsSubmitted.Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}
