package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Fan-out metrics
	SourceFetches      *prometheus.CounterVec
	SourceFetchLatency *prometheus.HistogramVec
	TurnsProcessed     prometheus.Counter

	// Recommendation metrics
	RecommendationRequests *prometheus.CounterVec

	// Quote cache metrics
	CacheLookups *prometheus.CounterVec

	// Collaborator health probe
	SourceUp *prometheus.GaugeVec

	connManager *ConnectionManager
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics(connManager *ConnectionManager, store *AggregationStore, cache *QuoteCacheService) *Metrics {
	metrics := &Metrics{
		connManager: connManager,

		// Source fetches by source and outcome (counter - only goes up)
		SourceFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "envision_source_fetches_total",
			Help: "Total number of source fetches by source and outcome",
		}, []string{"source", "outcome"}), // outcome: "ok", "cached", "no_lane", "error", "stale", "disabled"

		// Source fetch latency histogram per source
		SourceFetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "envision_source_fetch_duration_seconds",
			Help:    "Source fetch latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}, // engines answer within seconds
		}, []string{"source"}),

		// Conversation turns that reached the fan-out
		TurnsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "envision_turns_processed_total",
			Help: "Total number of conversation turns dispatched to the sources",
		}),

		// Recommendation requests by outcome
		RecommendationRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "envision_recommendation_requests_total",
			Help: "Total number of recommendation requests by outcome",
		}, []string{"outcome"}), // outcome: "ok", "insufficient_data", "error"

		// Quote cache lookups by result
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "envision_quote_cache_lookups_total",
			Help: "Total number of quote cache lookups by result",
		}, []string{"result"}), // result: "hit" or "miss"

		// Last health probe result per collaborator (1 up, 0 down)
		SourceUp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "envision_source_up",
			Help: "Whether the last health probe of the collaborator succeeded",
		}, []string{"source"}),
	}

	// Register collectors that read live state from the services
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "envision_websocket_connections_current",
			Help: "Current number of active WebSocket subscribers",
		},
		func() float64 {
			if connManager != nil {
				return float64(connManager.Count())
			}
			return 0
		},
	))
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "envision_sources_with_data",
			Help: "Number of aggregation slots currently holding data (0-4)",
		},
		func() float64 {
			if store != nil {
				return float64(store.CountWithData())
			}
			return 0
		},
	))
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "envision_quote_cache_items",
			Help: "Number of quotes in the local cache layer",
		},
		func() float64 {
			if cache != nil {
				return float64(cache.ItemCount())
			}
			return 0
		},
	))

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordSourceFetch records one source fetch outcome
func (m *Metrics) RecordSourceFetch(source, outcome string) {
	m.SourceFetches.WithLabelValues(source, outcome).Inc()
}

// RecordSourceLatency records how long one source fetch took
func (m *Metrics) RecordSourceLatency(source string, seconds float64) {
	m.SourceFetchLatency.WithLabelValues(source).Observe(seconds)
}

// RecordTurn records a dispatched conversation turn
func (m *Metrics) RecordTurn() {
	m.TurnsProcessed.Inc()
}

// RecordRecommendation records a recommendation request outcome
func (m *Metrics) RecordRecommendation(outcome string) {
	m.RecommendationRequests.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup records a quote cache hit or miss
func (m *Metrics) RecordCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordSourceUp records the latest probe verdict for a collaborator
func (m *Metrics) RecordSourceUp(source string, up bool) {
	value := 0.0
	if up {
		value = 1.0
	}
	m.SourceUp.WithLabelValues(source).Set(value)
}
