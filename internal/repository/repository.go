package repository

import (
	"github.com/yourusername/keiba-predictor/internal/database"
)

// Repositories aggregates every repository over one connection pool
type Repositories struct {
	Race       RaceRepository
	Prediction PredictionRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Race:       NewPostgresRaceRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
	}
}
