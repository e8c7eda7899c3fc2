// Package main provides the entry point for the prediction API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-predictor/internal/api"
	"github.com/yourusername/keiba-predictor/internal/config"
	"github.com/yourusername/keiba-predictor/internal/database"
	"github.com/yourusername/keiba-predictor/internal/datasource"
	"github.com/yourusername/keiba-predictor/internal/health"
	"github.com/yourusername/keiba-predictor/internal/logger"
	"github.com/yourusername/keiba-predictor/internal/metrics"
	"github.com/yourusername/keiba-predictor/internal/ml"
	"github.com/yourusername/keiba-predictor/internal/predictor"
	"github.com/yourusername/keiba-predictor/internal/repository"
	"github.com/yourusername/keiba-predictor/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := os.Getenv("KEIBA_PREDICTOR_CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLoggerForEnv(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
	}).Info("Keiba predictor API starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database and repositories are optional: without them the API still
	// serves ad hoc predictions from posted race cards.
	var (
		db    *database.DB
		repos *repository.Repositories
	)
	if cfg.Features.PersistencesEnabled {
		db, err = database.Initialize(ctx, cfg, appLog)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
		repos = repository.NewRepositories(db)
		appLog.Info("Database connection established")
	} else {
		appLog.Info("Persistence disabled; running without database")
	}

	// Optional ML collaborator.
	var mlClient *ml.CachedClient
	predictorOpts := []predictor.Option{predictor.WithModelVersion(cfg.Prediction.ModelVersion)}
	if cfg.Features.MLPredictionsEnabled && cfg.MLService.Enabled {
		mlClient = ml.NewCachedClient(&cfg.MLService, appLog)
		predictorOpts = append(predictorOpts, predictor.WithPlaceScorer(mlClient))
		appLog.WithField("ml_service_url", cfg.MLService.URL).Info("ML client initialized")
	} else {
		appLog.Info("ML predictions disabled; running rule-only")
	}

	predictionService := predictor.NewService(appLog, predictorOpts...)

	// Race-card source.
	httpClient := datasource.NewRateLimitedHTTPClient(cfg.DataSource, appLog)
	defer httpClient.Close()

	source, err := datasource.NewFactory(cfg.DataSource, appLog).New(httpClient)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create race-card source")
	}
	appLog.WithField("source", source.Name()).Info("Race-card source initialized")

	// Background prediction refresh.
	if cfg.Scheduler.Enabled {
		var (
			raceRepo   repository.RaceRepository
			resultRepo repository.PredictionRepository
		)
		if repos != nil {
			raceRepo = repos.Race
			resultRepo = repos.Prediction
		}
		job := scheduler.NewRefreshJob(source, predictionService, raceRepo, resultRepo, appLog)

		sched, err := scheduler.NewScheduler(cfg.Scheduler, job, appLog)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to create scheduler")
		}
		if err := sched.ScheduleRefresh(cfg.Scheduler.RefreshCron); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule prediction refresh")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		defer sched.Stop()
		appLog.WithField("next_run", sched.GetNextRun()).Info("Prediction refresh scheduled")
	}

	// Health and metrics sidecars.
	var healthModel health.ModelServiceChecker
	if mlClient != nil {
		healthModel = mlClient
	}
	var healthDB health.DatabasePinger
	if db != nil {
		healthDB = db
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		DB:          healthDB,
		Model:       healthModel,
	})
	if cfg.Health.Enabled {
		if err := healthServer.Start(ctx); err != nil {
			appLog.WithError(err).Fatal("Failed to start health server")
		}
	}

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			appLog.WithField("addr", addr).Info("Metrics server starting")
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	// API server.
	deps := api.Deps{
		Predictor: predictionService,
		Source:    source,
		Logger:    appLog,
	}
	if repos != nil {
		deps.Races = repos.Race
		deps.Predictions = repos.Prediction
	}
	apiServer := api.NewServer(cfg.Server, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start(ctx)
	}()

	healthServer.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"addr":        cfg.ServerAddr(),
		"ml":          mlClient != nil,
		"persistence": repos != nil,
		"scheduler":   cfg.Scheduler.Enabled,
	}).Info("Keiba predictor API running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			appLog.WithError(err).Error("API server exited")
		}
	}

	healthServer.SetReady(false)
	cancel()

	if err := apiServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during API server shutdown")
	}

	// Give components time to cleanup
	time.Sleep(1 * time.Second)

	appLog.Info("Keiba predictor API shut down successfully")
}
