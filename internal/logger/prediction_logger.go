// Package logger provides prediction-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for prediction runs.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogPredictionRun logs a completed prediction run.
func (pl *PredictionLogger) LogPredictionRun(raceID, venue, paceType string, entries int, confidence float64, usedML bool, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"race_id":     raceID,
		"venue":       venue,
		"pace_type":   paceType,
		"entries":     entries,
		"confidence":  confidence,
		"used_ml":     usedML,
		"duration_ms": durationMs,
	}).Info("Prediction run completed")
}

// LogDarkHorses logs the value picks surfaced by a prediction run.
func (pl *PredictionLogger) LogDarkHorses(raceID string, horseNumbers []int, reasons []string) {
	pl.WithFields(logrus.Fields{
		"race_id":       raceID,
		"horse_numbers": horseNumbers,
		"reasons":       reasons,
	}).Info("Dark horses flagged")
}

// LogTicketRecommendation logs the recommended bet for a race.
func (pl *PredictionLogger) LogTicketRecommendation(raceID string, pivots []int, trioCombinations, trifectaCombinations int, totalInvestment string) {
	pl.WithFields(logrus.Fields{
		"race_id":               raceID,
		"pivots":                pivots,
		"trio_combinations":     trioCombinations,
		"trifecta_combinations": trifectaCombinations,
		"total_investment":      totalInvestment,
	}).Info("Ticket recommendation generated")
}

// LogSimulationRun logs a completed race simulation.
func (pl *PredictionLogger) LogSimulationRun(raceID string, fieldSize, frames int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"race_id":     raceID,
		"field_size":  fieldSize,
		"frames":      frames,
		"duration_ms": durationMs,
	}).Info("Race simulation completed")
}

// LogDegradedMode logs a fall back to rule-only scoring.
func (pl *PredictionLogger) LogDegradedMode(raceID, reason string) {
	pl.WithFields(logrus.Fields{
		"race_id": raceID,
		"reason":  reason,
	}).Info("Running rule-only, ML scores unavailable")
}
