package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// the default registry panics on duplicate registration
	once sync.Once

	// HTTPRequestsTotal counts finished requests.
	//
	// route is the pattern (/v/:code), never the raw path, to keep label cardinality bounded.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// RedirectsTotal outcome: resolved | fallback | not_found | invalid
	RedirectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videolink_redirects_total",
			Help: "Share link redirects by outcome.",
		},
		[]string{"outcome"},
	)

	LinksCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "videolink_links_created_total",
			Help: "Share links generated through the API.",
		},
	)

	// CacheOperations layer: l1 | l2, result: hit | hit_negative | miss
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "videolink_content_cache_operations_total",
			Help: "Content cache lookups by layer and result.",
		},
		[]string{"layer", "result"},
	)

	BackendRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "videolink_backend_request_duration_seconds",
			Help:    "Catalog backend latency by result.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"result"},
	)

	ClickEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "videolink_click_events_dropped_total",
			Help: "Click events dropped because the collector buffer was full or closed.",
		},
	)
)

// Init registers the collectors once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			RedirectsTotal,
			LinksCreatedTotal,
			CacheOperations,
			BackendRequestDurationSeconds,
			ClickEventsDropped,
		)
	})
}
