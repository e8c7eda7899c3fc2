package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/keiba-predictor/internal/metrics"
	"github.com/yourusername/keiba-predictor/internal/models"
)

// raceCardRequest is the request body for prediction and simulation calls:
// a race context plus its declared starters.
type raceCardRequest struct {
	Race    models.RaceContext `json:"race"`
	Entries []models.EntryView `json:"entries"`
}

// raceDetailResponse is a stored race with its entry list.
type raceDetailResponse struct {
	Race    *models.RaceContext `json:"race"`
	Entries []models.EntryView  `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req raceCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	result, err := s.deps.Predictor.Predict(r.Context(), req.Entries, req.Race)
	if err != nil {
		writeError(w, statusForEngineError(err), err.Error())
		return
	}

	s.logPrediction(result, req.Race.Venue, len(req.Entries), time.Since(start))

	if s.deps.Predictions != nil {
		if err := s.deps.Predictions.Save(r.Context(), result); err != nil {
			// Persistence is best effort for ad hoc requests.
			s.deps.Logger.WithError(err).Warn("Failed to store prediction")
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req raceCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	sim, err := s.deps.Predictor.Simulate(req.Entries, req.Race)
	if err != nil {
		writeError(w, statusForEngineError(err), err.Error())
		return
	}

	s.plog.LogSimulationRun(sim.RaceID.String(), len(req.Entries), len(sim.AnimationFrames), float64(time.Since(start).Milliseconds()))

	writeJSON(w, http.StatusOK, sim)
}

func (s *Server) handleListRaces(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	if s.deps.Races != nil {
		races, err := s.deps.Races.GetByDate(r.Context(), date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list races")
			return
		}
		writeJSON(w, http.StatusOK, races)
		return
	}

	if s.deps.Source != nil {
		cards, err := s.deps.Source.FetchRaceCards(r.Context(), date)
		metrics.RecordRaceCardFetch(s.deps.Source.Name(), err)
		if err != nil {
			writeError(w, http.StatusBadGateway, "failed to fetch race cards")
			return
		}
		races := make([]*models.RaceContext, 0, len(cards))
		for i := range cards {
			races = append(races, &cards[i].Race)
		}
		writeJSON(w, http.StatusOK, races)
		return
	}

	writeError(w, http.StatusServiceUnavailable, "no race source configured")
}

func (s *Server) handleGetRace(w http.ResponseWriter, r *http.Request) {
	if s.deps.Races == nil {
		writeError(w, http.StatusServiceUnavailable, "race storage not configured")
		return
	}

	raceID, err := uuid.Parse(r.PathValue("raceID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid race ID")
		return
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

	writeJSON(w, http.StatusOK, raceDetailResponse{Race: race, Entries: entries})
}

func (s *Server) handleLatestPrediction(w http.ResponseWriter, r *http.Request) {
	if s.deps.Predictions == nil {
		writeError(w, http.StatusServiceUnavailable, "prediction storage not configured")
		return
	}

	raceID, err := uuid.Parse(r.PathValue("raceID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid race ID")
		return
	}

	result, err := s.deps.Predictions.GetLatest(r.Context(), raceID)
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no prediction stored for race")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load prediction")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePredictionHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.Predictions == nil {
		writeError(w, http.StatusServiceUnavailable, "prediction storage not configured")
		return
	}

	raceID, err := uuid.Parse(r.PathValue("raceID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid race ID")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	results, err := s.deps.Predictions.ListByRace(r.Context(), raceID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load prediction history")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) logPrediction(result *models.PredictionResult, venue string, entries int, elapsed time.Duration) {
	raceID := result.RaceID.String()

	s.plog.LogPredictionRun(raceID, venue, result.Pace.Type, entries, result.ConfidenceScore, result.UsedML, float64(elapsed.Milliseconds()))

	if horses := result.DarkHorses(); len(horses) > 0 {
		numbers := make([]int, 0, len(horses))
		reasons := make([]string, 0, len(horses))
		for _, h := range horses {
			numbers = append(numbers, h.HorseNumber)
			reasons = append(reasons, h.DarkHorseReason)
		}
		s.plog.LogDarkHorses(raceID, numbers, reasons)
	}

	if bets := result.RecommendedBets; bets != nil && bets.Trio != nil && bets.TrifectaMulti != nil {
		s.plog.LogTicketRecommendation(raceID, bets.Trio.Pivots, bets.Trio.Combinations, bets.TrifectaMulti.Combinations, bets.TotalInvestment.String())
	}
}

// statusForEngineError maps engine sentinel errors onto HTTP status codes.
func statusForEngineError(err error) int {
	switch {
	case errors.Is(err, models.ErrNoEntries),
		errors.Is(err, models.ErrDuplicateHorseNumber):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvariantViolated):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
