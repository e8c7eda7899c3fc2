// Package predictor is the orchestration facade over the prediction engine:
// it validates input, runs the pace classifier, scorer, ticket generator and
// simulator, and assembles the published result shapes.
package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-predictor/internal/betting"
	"github.com/yourusername/keiba-predictor/internal/metrics"
	"github.com/yourusername/keiba-predictor/internal/models"
	"github.com/yourusername/keiba-predictor/internal/pace"
	"github.com/yourusername/keiba-predictor/internal/scoring"
	"github.com/yourusername/keiba-predictor/internal/simulation"
)

// DefaultModelVersion tags results produced by the current rule set.
const DefaultModelVersion = "2.0.0"

// PlaceScorer supplies optional machine-learned place probabilities in [0,1]
// per horse. A nil map or an error leaves the engine in rule-only mode.
type PlaceScorer interface {
	PlaceProbabilities(ctx context.Context, raceID uuid.UUID, horseIDs []uuid.UUID) (map[uuid.UUID]float64, error)
}

// Service runs predictions and simulations. The underlying computation is
// pure; the service only adds input validation, the optional ML collaborator
// and logging.
type Service struct {
	logger       *logrus.Logger
	scorer       PlaceScorer
	modelVersion string
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPlaceScorer wires the optional ML collaborator.
func WithPlaceScorer(scorer PlaceScorer) Option {
	return func(s *Service) { s.scorer = scorer }
}

// WithModelVersion overrides the version tag stamped on results.
func WithModelVersion(version string) Option {
	return func(s *Service) { s.modelVersion = version }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a prediction service.
func NewService(logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		logger:       logger,
		modelVersion: DefaultModelVersion,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Predict produces the full ranked prediction for a race, consulting the ML
// collaborator when one is wired. ML unavailability degrades to rule-only
// scoring; it never fails the prediction.
func (s *Service) Predict(ctx context.Context, entries []models.EntryView, race models.RaceContext) (*models.PredictionResult, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}

	start := s.now()
	mlScores := s.fetchMLScores(ctx, entries, race)
	result := s.predict(entries, race, mlScores)

	metrics.RecordPrediction(result.UsedML, time.Since(start).Seconds(), len(entries), len(result.DarkHorses()))
	metrics.UpdateConfidence(result.Pace.Type, result.ConfidenceScore)

	s.logger.WithFields(logrus.Fields{
		"race_id":    race.RaceID,
		"venue":      race.Venue,
		"entries":    len(entries),
		"pace":       result.Pace.Type,
		"used_ml":    result.UsedML,
		"confidence": result.ConfidenceScore,
	}).Info("prediction complete")

	return result, nil
}

// PredictWithScores is the pure entry point: identical inputs always produce
// identical outputs apart from the ID and timestamp.
func (s *Service) PredictWithScores(entries []models.EntryView, race models.RaceContext, mlScores map[uuid.UUID]float64) (*models.PredictionResult, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	return s.predict(entries, race, mlScores), nil
}

func (s *Service) predict(entries []models.EntryView, race models.RaceContext, mlScores map[uuid.UUID]float64) *models.PredictionResult {
	analyses := scoring.Analyze(entries)
	paceResult := classifyPace(analyses, race)

	rankings, usedML := scoring.BuildRankings(analyses, paceResult, race, mlScores)
	tickets := betting.GenerateTickets(rankings, analyses, paceResult, race)

	pacePrediction := &models.PacePrediction{
		Type:               paceResult.PaceType,
		Confidence:         paceResult.Confidence,
		Reason:             paceResult.Reason,
		AdvantageousStyles: paceResult.AdvantageousStyles,
		EscapeCount:        paceResult.EscapeCount,
		FrontCount:         paceResult.FrontCount,
	}

	confidence := confidenceScore(paceResult, rankings, entries)

	return &models.PredictionResult{
		ID:              uuid.New(),
		RaceID:          race.RaceID,
		ModelVersion:    s.modelVersion,
		PredictedAt:     s.now(),
		Rankings:        rankings,
		Pace:            pacePrediction,
		RecommendedBets: tickets,
		ConfidenceScore: confidence,
		Reasoning:       buildReasoning(race, paceResult, rankings, tickets, usedML),
		UsedML:          usedML,
	}
}

// Simulate replays the race over the five checkpoints and derives scenarios
// and animation frames. It is pure and never consults the ML collaborator.
func (s *Service) Simulate(entries []models.EntryView, race models.RaceContext) (*models.RaceSimulation, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}

	analyses := scoring.Analyze(entries)
	paceResult := classifyPace(analyses, race)

	start := time.Now()
	sim, err := simulation.Build(analyses, race, paceResult)
	if err != nil {
		return nil, fmt.Errorf("simulating race %s: %w", race.RaceID, err)
	}
	metrics.RecordSimulation(time.Since(start).Seconds())
	return sim, nil
}

func validateEntries(entries []models.EntryView) error {
	if len(entries) == 0 {
		return models.ErrNoEntries
	}
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if seen[e.HorseNumber] {
			return fmt.Errorf("horse number %d: %w", e.HorseNumber, models.ErrDuplicateHorseNumber)
		}
		seen[e.HorseNumber] = true
	}
	return nil
}

func classifyPace(analyses []scoring.HorseAnalysis, race models.RaceContext) *pace.Result {
	styles := make([]models.RunningStyle, 0, len(analyses))
	var escapePopularities []int
	for i := range analyses {
		styles = append(styles, analyses[i].RunningStyle)
		if analyses[i].RunningStyle == models.StyleEscape && analyses[i].Popularity > 0 {
			escapePopularities = append(escapePopularities, analyses[i].Popularity)
		}
	}

	result := pace.Predict(pace.Request{
		RunningStyles:      styles,
		Distance:           race.Distance,
		CourseType:         race.CourseType,
		Venue:              race.Venue,
		TrackCondition:     race.EffectiveTrackCondition(),
		EscapePopularities: escapePopularities,
	})
	return &result
}

func (s *Service) fetchMLScores(ctx context.Context, entries []models.EntryView, race models.RaceContext) map[uuid.UUID]float64 {
	if s.scorer == nil {
		return nil
	}

	horseIDs := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		horseIDs = append(horseIDs, e.HorseID)
	}

	scores, err := s.scorer.PlaceProbabilities(ctx, race.RaceID, horseIDs)
	if err != nil {
		// Degraded mode: the rule-based scores stand on their own.
		metrics.RecordDegradedPrediction()
		s.logger.WithFields(logrus.Fields{
			"race_id": race.RaceID,
			"error":   err.Error(),
		}).Info("ml scores unavailable, running rule-only")
		return nil
	}
	if len(scores) == 0 {
		return nil
	}
	return scores
}

// confidenceScore combines pace certainty, the margin at the top of the
// rankings and market-data coverage into a single display value.
func confidenceScore(p *pace.Result, rankings []models.HorsePrediction, entries []models.EntryView) float64 {
	topGap := 0.0
	if len(rankings) >= 2 {
		topGap = rankings[0].Score - rankings[1].Score
	}

	withMarket := 0
	for i := range entries {
		if entries[i].HasMarketData() {
			withMarket++
		}
	}
	dataQuality := 0.0
	if len(entries) > 0 {
		dataQuality = float64(withMarket) / float64(len(entries))
	}

	confidence := p.Confidence*0.4 + minFloat(topGap*3.0, 0.3) + dataQuality*0.2 + 0.1
	return minFloat(confidence, 1.0)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
