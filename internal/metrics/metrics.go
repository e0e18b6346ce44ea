// Package metrics holds the prometheus collectors for provider traffic and
// recipe generation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cuistot"

var (
	// ProviderRequests counts provider calls by operation and outcome
	// (ok, malformed, invalid, error).
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total number of generation requests sent to the text provider",
		},
		[]string{"operation", "outcome"},
	)

	// ProviderAttempts counts HTTP attempts including retries.
	ProviderAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "attempts_total",
			Help:      "Total number of HTTP attempts made to the text provider",
		},
		[]string{"status"},
	)

	ProviderLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Duration of text provider calls including retries",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
	)

	// RecipeLookups counts resolutions by source: store, alias, generated, conflict.
	RecipeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recipes",
			Name:      "lookups_total",
			Help:      "Total number of recipe resolutions by source",
		},
		[]string{"source"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
		[]string{"prefix"},
	)
)
