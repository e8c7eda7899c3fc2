// Package repository provides PostgreSQL persistence for races, entries and
// prediction results.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/keiba-predictor/internal/models"
)

// RaceRepository stores race cards.
type RaceRepository interface {
	Create(ctx context.Context, race *models.RaceContext) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RaceContext, error)
	GetByDate(ctx context.Context, date time.Time) ([]*models.RaceContext, error)
	UpsertEntries(ctx context.Context, raceID uuid.UUID, entries []models.EntryView) error
	GetEntries(ctx context.Context, raceID uuid.UUID) ([]models.EntryView, error)
}

// PredictionRepository stores prediction runs keyed by race and model version.
type PredictionRepository interface {
	Save(ctx context.Context, result *models.PredictionResult) error
	GetLatest(ctx context.Context, raceID uuid.UUID) (*models.PredictionResult, error)
	ListByRace(ctx context.Context, raceID uuid.UUID, limit int) ([]*models.PredictionResult, error)
}
