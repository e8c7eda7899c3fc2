// Package ml provides Prometheus metrics for the model client.
package ml

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScoreRequestsTotal tracks place-probability requests
	ScoreRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_score_requests_total",
			Help: "Total number of place-probability requests",
		},
		[]string{"cache_hit"},
	)

	// ScoreLatency tracks place-probability request latency
	ScoreLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ml_score_latency_seconds",
			Help:    "Place-probability request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ScoreErrorsTotal tracks failed place-probability requests
	ScoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_score_errors_total",
			Help: "Total number of failed place-probability requests",
		},
		[]string{"error_type"},
	)

	// CacheHitRatio tracks the score cache hit ratio
	CacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ml_score_cache_hit_ratio",
			Help: "Place-probability cache hit ratio",
		},
	)
)
