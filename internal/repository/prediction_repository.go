package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/keiba-predictor/internal/database"
	"github.com/yourusername/keiba-predictor/internal/models"
)

// predictionPayload is the JSONB body stored alongside the indexed columns.
// Rankings, pace and tickets are read back as a unit, never queried
// field-by-field, so a document column keeps the schema stable as the engine
// output evolves.
type predictionPayload struct {
	Rankings        []models.HorsePrediction `json:"rankings"`
	Pace            *models.PacePrediction   `json:"pace_prediction,omitempty"`
	RecommendedBets *models.BetTicketSet     `json:"recommended_bets,omitempty"`
	Reasoning       string                   `json:"reasoning"`
}

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Save inserts a prediction run
func (r *PostgresPredictionRepository) Save(ctx context.Context, result *models.PredictionResult) error {
	payload, err := json.Marshal(predictionPayload{
		Rankings:        result.Rankings,
		Pace:            result.Pace,
		RecommendedBets: result.RecommendedBets,
		Reasoning:       result.Reasoning,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal prediction payload: %w", err)
	}

	query := `
		INSERT INTO predictions (id, race_id, model_version, predicted_at, confidence, used_ml, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		result.ID, result.RaceID, result.ModelVersion, result.PredictedAt,
		result.ConfidenceScore, result.UsedML, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recent prediction for a race
func (r *PostgresPredictionRepository) GetLatest(ctx context.Context, raceID uuid.UUID) (*models.PredictionResult, error) {
	query := `
		SELECT id, race_id, model_version, predicted_at, confidence, used_ml, payload
		FROM predictions
		WHERE race_id = $1
		ORDER BY predicted_at DESC
		LIMIT 1
	`

	result, err := scanPrediction(r.db.GetPool().QueryRow(ctx, query, raceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest prediction: %w", err)
	}
	return result, nil
}

// ListByRace retrieves the prediction history for a race, newest first
func (r *PostgresPredictionRepository) ListByRace(ctx context.Context, raceID uuid.UUID, limit int) ([]*models.PredictionResult, error) {
	query := `
		SELECT id, race_id, model_version, predicted_at, confidence, used_ml, payload
		FROM predictions
		WHERE race_id = $1
		ORDER BY predicted_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var results []*models.PredictionResult
	for rows.Next() {
		result, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

func scanPrediction(row pgx.Row) (*models.PredictionResult, error) {
	result := &models.PredictionResult{}
	var raw []byte

	err := row.Scan(
		&result.ID, &result.RaceID, &result.ModelVersion, &result.PredictedAt,
		&result.ConfidenceScore, &result.UsedML, &raw,
	)
	if err != nil {
		return nil, err
	}

	var payload predictionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prediction payload: %w", err)
	}

	result.Rankings = payload.Rankings
	result.Pace = payload.Pace
	result.RecommendedBets = payload.RecommendedBets
	result.Reasoning = payload.Reasoning
	return result, nil
}
