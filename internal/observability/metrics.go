package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	recommendationsTotal   *prometheus.CounterVec
	matchDecisionsTotal    *prometheus.CounterVec
	collaborationsStarted  *prometheus.CounterVec
	eventsPublishedTotal   *prometheus.CounterVec
	eventStreamClients     prometheus.Gauge
	ratingsSubmittedTotal  prometheus.Counter
	applicationsTotal      *prometheus.CounterVec
	cacheLookupsTotal      *prometheus.CounterVec
	recommendationDuration prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konverge_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "konverge_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konverge_http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		recommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konverge_recommendations_generated_total",
			Help: "Recommendation rows written per generation outcome.",
		}, []string{"outcome"})

		matchDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konverge_match_decisions_total",
			Help: "Match decisions recorded by actor, decision and outcome.",
		}, []string{"actor", "decision", "outcome"})

		collaborationsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konverge_collaborations_started_total",
			Help: "Collaborations created or reactivated after mutual acceptance.",
		}, []string{"kind"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konverge_events_published_total",
			Help: "Match lifecycle events delivered to stream subscribers.",
		}, []string{"type"})

		eventStreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "konverge_event_stream_clients_active",
			Help: "Number of connected event stream clients.",
		})

		ratingsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "konverge_ratings_submitted_total",
			Help: "Peer ratings submitted.",
		})

		applicationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konverge_applications_total",
			Help: "Manual project applications by outcome.",
		}, []string{"outcome"})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konverge_cache_lookups_total",
			Help: "Cache lookups by result.",
		}, []string{"result"})

		recommendationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "konverge_recommendation_duration_seconds",
			Help:    "Time spent generating recommendations for one project.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			recommendationsTotal,
			matchDecisionsTotal,
			collaborationsStarted,
			eventsPublishedTotal,
			eventStreamClients,
			ratingsSubmittedTotal,
			applicationsTotal,
			cacheLookupsTotal,
			recommendationDuration,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// RecommendationsGenerated counts recommendation rows written.
func RecommendationsGenerated() *prometheus.CounterVec {
	RegisterMetrics()
	return recommendationsTotal
}

// RecommendationDuration observes generation latency.
func RecommendationDuration() prometheus.Histogram {
	RegisterMetrics()
	return recommendationDuration
}

// MatchDecisions counts decision submissions.
func MatchDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return matchDecisionsTotal
}

// CollaborationsStarted counts collaboration creations and reactivations.
func CollaborationsStarted() *prometheus.CounterVec {
	RegisterMetrics()
	return collaborationsStarted
}

// EventsPublished counts events fanned out to subscribers.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// EventStreamClients tracks connected stream clients.
func EventStreamClients() prometheus.Gauge {
	RegisterMetrics()
	return eventStreamClients
}

// RatingsSubmitted counts completed ratings.
func RatingsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return ratingsSubmittedTotal
}

// Applications counts manual applications.
func Applications() *prometheus.CounterVec {
	RegisterMetrics()
	return applicationsTotal
}

// CacheLookups counts cache hits and misses.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}
