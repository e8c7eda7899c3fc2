package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-predictor/internal/datasource"
	"github.com/yourusername/keiba-predictor/internal/models"
	"github.com/yourusername/keiba-predictor/internal/repository"
)

// RacePredictor produces a prediction for one race card.
type RacePredictor interface {
	Predict(ctx context.Context, entries []models.EntryView, race models.RaceContext) (*models.PredictionResult, error)
}

// RefreshJob fetches the day's race cards, recomputes predictions and
// persists both. Implements RefreshRunner.
type RefreshJob struct {
	source    datasource.RaceCardSource
	predictor RacePredictor
	races     repository.RaceRepository
	results   repository.PredictionRepository
	logger    *logrus.Logger
}

// NewRefreshJob creates a refresh job. The repositories may be nil, in which
// case predictions are computed but not persisted.
func NewRefreshJob(
	source datasource.RaceCardSource,
	predictor RacePredictor,
	races repository.RaceRepository,
	results repository.PredictionRepository,
	logger *logrus.Logger,
) *RefreshJob {
	return &RefreshJob{
		source:    source,
		predictor: predictor,
		races:     races,
		results:   results,
		logger:    logger,
	}
}

// Run refreshes every race card scheduled for the given date. A failure on
// one race is logged and skipped so the remaining cards still refresh.
func (j *RefreshJob) Run(ctx context.Context, date time.Time) error {
	cards, err := j.source.FetchRaceCards(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to fetch race cards: %w", err)
	}
	if len(cards) == 0 {
		j.logger.WithField("date", date.Format("2006-01-02")).Info("No race cards scheduled")
		return nil
	}

	var refreshed, failed int
	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := j.refreshCard(ctx, card); err != nil {
			failed++
			j.logger.WithFields(logrus.Fields{
				"race_id": card.Race.RaceID,
				"race":    card.Race.Name,
			}).WithError(err).Error("Failed to refresh race prediction")
			continue
		}
		refreshed++
	}

	j.logger.WithFields(logrus.Fields{
		"refreshed": refreshed,
		"failed":    failed,
	}).Info("Prediction refresh pass finished")

	if refreshed == 0 && failed > 0 {
		return fmt.Errorf("all %d race refreshes failed", failed)
	}
	return nil
}

func (j *RefreshJob) refreshCard(ctx context.Context, card datasource.RaceCard) error {
	if j.races != nil {
		if err := j.races.Create(ctx, &card.Race); err != nil {
			return fmt.Errorf("failed to store race: %w", err)
		}
		if err := j.races.UpsertEntries(ctx, card.Race.RaceID, card.Entries); err != nil {
			return fmt.Errorf("failed to store entries: %w", err)
		}
	}

	result, err := j.predictor.Predict(ctx, card.Entries, card.Race)
	if err != nil {
		return err
	}

	if j.results != nil {
		if err := j.results.Save(ctx, result); err != nil {
			return fmt.Errorf("failed to store prediction: %w", err)
		}
	}
	return nil
}
