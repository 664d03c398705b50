package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Cache metrics
	CacheHitsTotal          *prometheus.CounterVec
	CacheMissesTotal        *prometheus.CounterVec
	CacheInvalidationsTotal *prometheus.CounterVec
	CacheDurableErrorsTotal *prometheus.CounterVec
	CacheEntries            prometheus.Gauge

	// Upstream metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	UpstreamRetriesTotal    prometheus.Counter
	UpstreamBreakerOpen     prometheus.Gauge

	// Ticket event metrics
	TicketEventsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "deskgate"
	}

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Cache metrics
		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache", "tier"}, // tier: memory, durable
		),
		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
		CacheInvalidationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "invalidations_total",
				Help:      "Total number of cache entries invalidated",
			},
			[]string{"cache"},
		),
		CacheDurableErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "durable_errors_total",
				Help:      "Total number of durable tier failures that were absorbed",
			},
			[]string{"operation"}, // get, set, delete, scan
		),
		CacheEntries: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "entries",
				Help:      "Current number of entries in the volatile tier",
			},
		),

		// Upstream metrics
		UpstreamRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of helpdesk API requests",
			},
			[]string{"method", "status"},
		),
		UpstreamRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Helpdesk API request duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
		UpstreamRetriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "retries_total",
				Help:      "Total number of retried helpdesk API requests",
			},
		),
		UpstreamBreakerOpen: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "breaker_open",
				Help:      "Whether the upstream circuit breaker is open (1=open)",
			},
		),

		// Ticket event metrics
		TicketEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tickets",
				Name:      "events_total",
				Help:      "Total number of ticket domain events",
			},
			[]string{"event"},
		),
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit in the given tier.
func (m *Metrics) RecordCacheHit(cache, tier string) {
	m.CacheHitsTotal.WithLabelValues(cache, tier).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordCacheInvalidations records invalidated entries.
func (m *Metrics) RecordCacheInvalidations(cache string, count int) {
	if count > 0 {
		m.CacheInvalidationsTotal.WithLabelValues(cache).Add(float64(count))
	}
}

// RecordCacheDurableError records an absorbed durable tier failure.
func (m *Metrics) RecordCacheDurableError(operation string) {
	m.CacheDurableErrorsTotal.WithLabelValues(operation).Inc()
}

// SetCacheEntries sets the volatile tier entry count.
func (m *Metrics) SetCacheEntries(count int) {
	m.CacheEntries.Set(float64(count))
}

// RecordUpstreamRequest records a helpdesk API request.
func (m *Metrics) RecordUpstreamRequest(method string, status int, duration time.Duration) {
	m.UpstreamRequestsTotal.WithLabelValues(method, statusCodeToString(status)).Inc()
	m.UpstreamRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordUpstreamRetry records a retried helpdesk API request.
func (m *Metrics) RecordUpstreamRetry() {
	m.UpstreamRetriesTotal.Inc()
}

// SetBreakerOpen sets the upstream circuit breaker state.
func (m *Metrics) SetBreakerOpen(open bool) {
	value := 0.0
	if open {
		value = 1.0
	}
	m.UpstreamBreakerOpen.Set(value)
}

// RecordTicketEvent records a ticket domain event.
func (m *Metrics) RecordTicketEvent(event string) {
	m.TicketEventsTotal.WithLabelValues(event).Inc()
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
