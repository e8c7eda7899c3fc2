package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/keiba-predictor/internal/database"
	"github.com/yourusername/keiba-predictor/internal/models"
)

const (
	errScanRace  = "failed to scan race: %w"
	errScanEntry = "failed to scan entry: %w"
)

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

// Create inserts a race, updating it when it already exists. Track condition
// and grade can change between the morning card and post time.
func (r *PostgresRaceRepository) Create(ctx context.Context, race *models.RaceContext) error {
	query := `
		INSERT INTO races (race_id, name, date, venue, course_type, distance, track_condition, grade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (race_id) DO UPDATE SET
			name = EXCLUDED.name,
			date = EXCLUDED.date,
			venue = EXCLUDED.venue,
			course_type = EXCLUDED.course_type,
			distance = EXCLUDED.distance,
			track_condition = EXCLUDED.track_condition,
			grade = EXCLUDED.grade
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		race.RaceID, race.Name, race.Date, race.Venue, race.CourseType,
		race.Distance, race.TrackCondition, race.Grade,
	)
	if err != nil {
		return fmt.Errorf("failed to create race: %w", err)
	}

	return nil
}

// GetByID retrieves a race by ID
func (r *PostgresRaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RaceContext, error) {
	query := `
		SELECT race_id, name, date, venue, course_type, distance, track_condition, grade
		FROM races WHERE race_id = $1
	`

	race := &models.RaceContext{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&race.RaceID, &race.Name, &race.Date, &race.Venue, &race.CourseType,
		&race.Distance, &race.TrackCondition, &race.Grade,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}

	return race, nil
}

// GetByDate retrieves all races on a given day ordered by venue and name
func (r *PostgresRaceRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.RaceContext, error) {
	query := `
		SELECT race_id, name, date, venue, course_type, distance, track_condition, grade
		FROM races
		WHERE date::date = $1::date
		ORDER BY venue, name
	`

	rows, err := r.db.GetPool().Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query races by date: %w", err)
	}
	defer rows.Close()

	var races []*models.RaceContext
	for rows.Next() {
		race := &models.RaceContext{}
		err := rows.Scan(
			&race.RaceID, &race.Name, &race.Date, &race.Venue, &race.CourseType,
			&race.Distance, &race.TrackCondition, &race.Grade,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanRace, err)
		}
		races = append(races, race)
	}

	return races, rows.Err()
}

// UpsertEntries replaces the stored entry list for a race. Odds and
// popularity refresh right up to post time, so entries are rewritten rather
// than merged.
func (r *PostgresRaceRepository) UpsertEntries(ctx context.Context, raceID uuid.UUID, entries []models.EntryView) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM race_entries WHERE race_id = $1`, raceID); err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}

		query := `
			INSERT INTO race_entries (race_id, horse_id, horse_name, horse_number, post_position,
			                          running_style, odds, popularity, jockey_name, horse_weight, horse_weight_diff)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		for i := range entries {
			e := &entries[i]
			_, err := tx.Exec(ctx, query,
				raceID, e.HorseID, e.HorseName, e.HorseNumber, e.PostPosition,
				e.RunningStyle, e.Odds, e.Popularity, e.JockeyName, e.HorseWeight, e.HorseWeightDiff,
			)
			if err != nil {
				return fmt.Errorf("failed to insert entry %d: %w", e.HorseNumber, err)
			}
		}
		return nil
	})
}

// GetEntries retrieves the entry list for a race in starting-number order
func (r *PostgresRaceRepository) GetEntries(ctx context.Context, raceID uuid.UUID) ([]models.EntryView, error) {
	query := `
		SELECT horse_id, horse_name, horse_number, post_position, running_style,
		       odds, popularity, jockey_name, horse_weight, horse_weight_diff
		FROM race_entries
		WHERE race_id = $1
		ORDER BY horse_number ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.EntryView
	for rows.Next() {
		var e models.EntryView
		err := rows.Scan(
			&e.HorseID, &e.HorseName, &e.HorseNumber, &e.PostPosition, &e.RunningStyle,
			&e.Odds, &e.Popularity, &e.JockeyName, &e.HorseWeight, &e.HorseWeightDiff,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanEntry, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
