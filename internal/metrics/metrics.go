// Package metrics provides centralized Prometheus metrics for the predictor.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "keiba_predictor"

// Counter metrics
var (
	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of prediction runs by mode",
	}, []string{"used_ml"})

	DegradedPredictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "degraded_predictions_total",
		Help:      "Total number of prediction runs that fell back to rule-only mode",
	})

	SimulationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulations_total",
		Help:      "Total number of race simulations built",
	})

	DarkHorsesFlaggedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dark_horses_flagged_total",
		Help:      "Total number of dark horse flags across prediction runs",
	})

	RaceCardFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "race_card_fetches_total",
		Help:      "Total number of race card fetches by source and status",
	}, []string{"source", "status"})
)

// Gauge metrics
var (
	PredictionConfidence = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "prediction_confidence",
		Help:      "Confidence score of the latest prediction per pace type",
	}, []string{"pace_type"})
)

// Histogram metrics
var (
	PredictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "Duration of prediction runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	SimulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_duration_seconds",
		Help:      "Duration of race simulation builds in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	FieldSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "field_size",
		Help:      "Number of starters per predicted race",
		Buckets:   []float64{4, 6, 8, 10, 12, 14, 16, 18},
	})
)

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPrediction records a completed prediction run.
func RecordPrediction(usedML bool, durationSeconds float64, entries, darkHorses int) {
	label := "false"
	if usedML {
		label = "true"
	}
	PredictionsTotal.WithLabelValues(label).Inc()
	PredictionDuration.Observe(durationSeconds)
	FieldSize.Observe(float64(entries))
	DarkHorsesFlaggedTotal.Add(float64(darkHorses))
}

// RecordDegradedPrediction records a run that fell back to rule-only mode.
func RecordDegradedPrediction() {
	DegradedPredictionsTotal.Inc()
}

// RecordSimulation records a completed simulation build.
func RecordSimulation(durationSeconds float64) {
	SimulationsTotal.Inc()
	SimulationDuration.Observe(durationSeconds)
}

// RecordRaceCardFetch records a race card fetch attempt.
func RecordRaceCardFetch(source string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	RaceCardFetchesTotal.WithLabelValues(source, status).Inc()
}

// UpdateConfidence updates the latest confidence gauge for a pace type.
func UpdateConfidence(paceType string, confidence float64) {
	PredictionConfidence.WithLabelValues(paceType).Set(confidence)
}
