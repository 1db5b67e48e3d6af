// Package metrics exposes Prometheus instrumentation for outbound TMDB calls,
// the id resolution cache and the recommendation pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Outbound HTTP
	OutboundRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_outbound_requests_total",
			Help: "Outbound HTTP attempts by endpoint and status (status is \"error\" for transport failures)",
		},
		[]string{"endpoint", "status"},
	)

	OutboundRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_outbound_retries_total",
			Help: "Outbound HTTP retries by endpoint",
		},
		[]string{"endpoint"},
	)

	OutboundDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_outbound_request_duration_seconds",
			Help:    "Duration of outbound HTTP calls including retries",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	// ID resolution cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_cache_hits_total",
			Help: "Cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_cache_misses_total",
			Help: "Cache misses by cache name",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_cache_evictions_total",
			Help: "Cache evictions by cache name",
		},
		[]string{"cache"},
	)

	// Recommendations
	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_recommend_duration_seconds",
			Help:    "End-to-end duration of a recommendation lookup including enrichment",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// Inbound API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_api_requests_total",
			Help: "API requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_api_request_duration_seconds",
			Help:    "API request duration by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	EnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_enrichment_failures_total",
			Help: "Enrichment lookups that degraded to a placeholder, by field and reason",
		},
		[]string{"field", "reason"},
	)
)

// RecordOutbound records a single outbound attempt. status <= 0 means a transport error.
func RecordOutbound(endpoint string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	OutboundRequests.WithLabelValues(endpoint, label).Inc()
}

// ObserveOutbound records the total duration of an outbound call.
func ObserveOutbound(endpoint string, start time.Time) {
	OutboundDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// ObserveRecommend records a recommendation pipeline duration.
func ObserveRecommend(kind string, start time.Time) {
	RecommendDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// RecordAPIRequest records one served API request. route is the matched route pattern.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
