package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yourusername/keiba-predictor/internal/models"
)

const (
	defaultFrameIntervalMs = 50
	maxFrameIntervalMs     = 1000
	streamWriteTimeout     = 5 * time.Second
)

// streamFrame is one WebSocket message of the animation stream.
type streamFrame struct {
	Frame      int                   `json:"frame"`
	TotalFrame int                   `json:"total_frames"`
	Data       models.AnimationFrame `json:"data"`
}

// streamDone closes the stream after the last frame.
type streamDone struct {
	Done       bool   `json:"done"`
	RaceID     string `json:"race_id"`
	FrameCount int    `json:"frame_count"`
}

// handleSimulationStream replays a stored race's animation frames over a
// WebSocket, one message per frame, paced by the interval_ms query parameter.
func (s *Server) handleSimulationStream(w http.ResponseWriter, r *http.Request) {
	if s.deps.Races == nil {
		writeError(w, http.StatusServiceUnavailable, "race storage not configured")
		return
	}

	raceID, err := uuid.Parse(r.PathValue("raceID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid race ID")
		return
	}

	interval := defaultFrameIntervalMs
	if raw := r.URL.Query().Get("interval_ms"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > maxFrameIntervalMs {
			writeError(w, http.StatusBadRequest, "interval_ms must be between 0 and 1000")
			return
		}
		interval = parsed
	}

	race, err := s.deps.Races.GetByID(r.Context(), raceID)
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, "race not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load race")
		return
	}

	entries, err := s.deps.Races.GetEntries(r.Context(), raceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load entries")
		return
	}

	sim, err := s.deps.Predictor.Simulate(entries, *race)
	if err != nil {
		writeError(w, statusForEngineError(err), err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.deps.Logger.WithError(err).Debug("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	s.streamFrames(conn, sim, time.Duration(interval)*time.Millisecond)
}

func (s *Server) streamFrames(conn *websocket.Conn, sim *models.RaceSimulation, interval time.Duration) {
	total := len(sim.AnimationFrames)

	for i, frame := range sim.AnimationFrames {
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(streamFrame{Frame: i, TotalFrame: total, Data: frame}); err != nil {
			s.deps.Logger.WithError(err).Debug("Animation stream closed by client")
			return
		}
		if interval > 0 && i < total-1 {
			time.Sleep(interval)
		}
	}

	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	if err := conn.WriteJSON(streamDone{Done: true, RaceID: sim.RaceID.String(), FrameCount: total}); err != nil {
		return
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
