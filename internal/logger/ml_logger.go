// Package logger provides ML-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// MLLogger provides dedicated logging for the place-probability model client.
type MLLogger struct {
	*logrus.Entry
}

// NewMLLogger creates a new ML logger.
func NewMLLogger(baseLogger *logrus.Logger) *MLLogger {
	return &MLLogger{
		Entry: baseLogger.WithField("component", "ml"),
	}
}

// LogScoreRequest logs a place-probability request.
func (ml *MLLogger) LogScoreRequest(raceID string, horses int, cacheHit bool, latencyMs float64) {
	ml.WithFields(logrus.Fields{
		"race_id":    raceID,
		"horses":     horses,
		"cache_hit":  cacheHit,
		"latency_ms": latencyMs,
	}).Info("ML score request completed")
}

// LogScoreError logs a failed place-probability request.
func (ml *MLLogger) LogScoreError(raceID string, errorReason string) {
	ml.WithFields(logrus.Fields{
		"race_id":      raceID,
		"error_reason": errorReason,
	}).Error("ML score request failed")
}

// LogCacheEviction logs cached score expiry.
func (ml *MLLogger) LogCacheEviction(raceID string) {
	ml.WithFields(logrus.Fields{
		"race_id": raceID,
	}).Debug("Cached ML scores expired")
}
