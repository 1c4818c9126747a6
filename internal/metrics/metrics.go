package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Dashboard metrics
	loadsTotal      *prometheus.CounterVec
	loadDuration    *prometheus.HistogramVec
	staleCommits    *prometheus.CounterVec
	liveCharts      prometheus.Gauge
	sessionsActive  prometheus.Gauge
	strategyJobs    *prometheus.CounterVec
	refreshesTotal  *prometheus.CounterVec
	liveConnections prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Dashboard metrics
	r.loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasi_loads_total",
			Help: "Total number of backend loads by outcome source",
		},
		[]string{"endpoint", "source"},
	)
	r.loadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasi_load_duration_seconds",
			Help:    "Backend load duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	r.staleCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasi_stale_commits_total",
			Help: "Total number of region renders dropped because a newer load started",
		},
		[]string{"region"},
	)
	r.liveCharts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasi_live_charts",
			Help: "Number of live chart handles across sessions",
		},
	)
	r.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasi_sessions_active",
			Help: "Number of live dashboard sessions",
		},
	)
	r.strategyJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasi_strategy_jobs_total",
			Help: "Total number of strategy jobs by final status",
		},
		[]string{"status"},
	)
	r.refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasi_refreshes_total",
			Help: "Total number of scheduled refresh runs",
		},
		[]string{"status"},
	)
	r.liveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasi_live_connections",
			Help: "Number of open websocket connections",
		},
	)

	reg.MustRegister(r.loadsTotal)
	reg.MustRegister(r.loadDuration)
	reg.MustRegister(r.staleCommits)
	reg.MustRegister(r.liveCharts)
	reg.MustRegister(r.sessionsActive)
	reg.MustRegister(r.strategyJobs)
	reg.MustRegister(r.refreshesTotal)
	reg.MustRegister(r.liveConnections)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordLoad records a backend load and where its payload came from.
func (r *Registry) RecordLoad(endpoint, source string, d time.Duration) {
	r.loadsTotal.WithLabelValues(endpoint, source).Inc()
	r.loadDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordStale records a dropped region render.
func (r *Registry) RecordStale(region string) {
	r.staleCommits.WithLabelValues(region).Inc()
}

// LiveCharts returns the live chart gauge.
func (r *Registry) LiveCharts() prometheus.Gauge {
	return r.liveCharts
}

// SetSessions sets the number of live sessions.
func (r *Registry) SetSessions(n int) {
	r.sessionsActive.Set(float64(n))
}

// RecordStrategyJob records a finished strategy job.
func (r *Registry) RecordStrategyJob(status string) {
	r.strategyJobs.WithLabelValues(status).Inc()
}

// RecordRefresh records a scheduled refresh run.
func (r *Registry) RecordRefresh(status string) {
	r.refreshesTotal.WithLabelValues(status).Inc()
}

// LiveConnections returns the websocket connection gauge.
func (r *Registry) LiveConnections() prometheus.Gauge {
	return r.liveConnections
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
