// Package api exposes the prediction engine over HTTP and WebSocket.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-predictor/internal/config"
	"github.com/yourusername/keiba-predictor/internal/datasource"
	"github.com/yourusername/keiba-predictor/internal/logger"
	"github.com/yourusername/keiba-predictor/internal/predictor"
	"github.com/yourusername/keiba-predictor/internal/repository"
)

// Deps are the collaborators of the API server. Predictor is required; the
// repositories and race-card source are optional and their endpoints return
// 503 when absent.
type Deps struct {
	Predictor   *predictor.Service
	Source      datasource.RaceCardSource
	Races       repository.RaceRepository
	Predictions repository.PredictionRepository
	Logger      *logrus.Logger
}

// Server is the HTTP API server for predictions and simulations.
type Server struct {
	cfg        config.ServerConfig
	deps       Deps
	plog       *logger.PredictionLogger
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// NewServer creates an API server.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	return &Server{
		cfg:  cfg,
		deps: deps,
		plog: logger.NewPredictionLogger(deps.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The viewer is served from a separate origin in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/predictions", s.handlePredict)
	mux.HandleFunc("POST /api/v1/simulations", s.handleSimulate)

	mux.HandleFunc("GET /api/v1/races", s.handleListRaces)
	mux.HandleFunc("GET /api/v1/races/{raceID}", s.handleGetRace)
	mux.HandleFunc("GET /api/v1/races/{raceID}/prediction", s.handleLatestPrediction)
	mux.HandleFunc("GET /api/v1/races/{raceID}/predictions", s.handlePredictionHistory)
	mux.HandleFunc("GET /api/v1/races/{raceID}/simulation/stream", s.handleSimulationStream)

	return mux
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.WithField("addr", s.httpServer.Addr).Info("API server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	s.deps.Logger.Info("API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
