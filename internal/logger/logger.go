// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a configured logger, reading the environment from
// KEIBA_PREDICTOR_ENVIRONMENT.
func NewLogger(logLevel string) *logrus.Logger {
	return NewLoggerForEnv(logLevel, os.Getenv("KEIBA_PREDICTOR_ENVIRONMENT"))
}

// NewLoggerForEnv creates a configured logger for an explicit environment.
// Production logs JSON for ingestion; everything else gets colored text.
func NewLoggerForEnv(logLevel, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}
