package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the estimate HTTP handler
	EstimateLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "estimation_estimate_latency_seconds",
		Help:    "Latency of trip price estimations",
		Buckets: prometheus.DefBuckets,
	})

	// Estimations served, labeled by outcome status
	EstimateRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimation_estimate_requests_total",
		Help: "Total number of estimate requests by status",
	}, []string{"status"})

	// Relaxation level that produced the match (1-4)
	RelaxationLevel = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimation_relaxation_level_total",
		Help: "Relaxation level at which candidate search succeeded",
	}, []string{"level"})

	// Perimeter downgrades from isochrone to circle
	IsochroneFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "estimation_isochrone_fallbacks_total",
		Help: "Total number of isochrone to circle perimeter downgrades",
	})

	// ML classifier calls, labeled by result
	ClassifierCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimation_classifier_calls_total",
		Help: "Total number of ML classifier fallback calls",
	}, []string{"result"})
)
