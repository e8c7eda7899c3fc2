package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLogger("warn")
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	// Unknown levels fall back to info
	log = NewLogger("shout")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestPredictionLoggerRun(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogPredictionRun(
		"race_123",
		"中山",
		"high",
		16,
		0.72,
		false,
		12.5,
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "race_123", logEntry["race_id"])
	assert.Equal(t, "prediction", logEntry["component"])
	assert.Equal(t, "high", logEntry["pace_type"])
	assert.Equal(t, false, logEntry["used_ml"])
}

func TestPredictionLoggerDarkHorses(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogDarkHorses("race_123", []int{7, 12}, []string{"展開最有利", "人気9→予測4位"})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "race_123", logEntry["race_id"])
	assert.Len(t, logEntry["horse_numbers"], 2)
}

func TestPredictionLoggerTicketRecommendation(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogTicketRecommendation("race_123", []int{1, 7}, 4, 18, "7600")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(18), logEntry["trifecta_combinations"])
	assert.Equal(t, "7600", logEntry["total_investment"])
}

func TestPredictionLoggerDegradedMode(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogDegradedMode("race_123", "model host unreachable")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "model host unreachable", logEntry["reason"])
	assert.Equal(t, "info", logEntry["level"])
}

func TestMLLoggerScoreRequest(t *testing.T) {
	log, buf := setupTestLogger()
	mlLogger := NewMLLogger(log)

	mlLogger.LogScoreRequest("race_123", 16, true, 45)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "ml", logEntry["component"])
	assert.Equal(t, true, logEntry["cache_hit"])
}

func TestMLLoggerScoreError(t *testing.T) {
	log, buf := setupTestLogger()
	mlLogger := NewMLLogger(log)

	mlLogger.LogScoreError("race_123", "timeout")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "timeout", logEntry["error_reason"])
	assert.Equal(t, "error", logEntry["level"])
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogSimulationRun("race_123", 16, 61, 8.2)

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkPredictionLoggerRun(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	predictionLogger := NewPredictionLogger(log)

	for i := 0; i < b.N; i++ {
		predictionLogger.LogPredictionRun("race_123", "中山", "high", 16, 0.72, false, 12.5)
	}
}
