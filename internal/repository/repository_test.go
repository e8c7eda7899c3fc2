package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/keiba-predictor/internal/database"
	"github.com/yourusername/keiba-predictor/internal/models"
)

const skipIntegrationMsg = "Integration test - requires database setup (set KEIBA_PREDICTOR_TEST_DB=1)"

func integrationDB(t *testing.T) *database.DB {
	if os.Getenv("KEIBA_PREDICTOR_TEST_DB") == "" {
		t.Skip(skipIntegrationMsg)
	}
	return database.SetupTestDB(t)
}

// TestRaceRepositoryRoundTrip tests race creation and retrieval
func TestRaceRepositoryRoundTrip(t *testing.T) {
	db := integrationDB(t)
	defer database.TeardownTestDB(t, db)

	repos := NewRepositories(db)

	race := &models.RaceContext{
		RaceID:         uuid.New(),
		Name:           "有馬記念",
		Date:           time.Now().Add(24 * time.Hour),
		Venue:          "中山",
		CourseType:     models.CourseTurf,
		Distance:       2500,
		TrackCondition: models.TrackGood,
		Grade:          "G1",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := repos.Race.Create(ctx, race); err != nil {
		t.Fatalf("failed to create race: %v", err)
	}

	retrieved, err := repos.Race.GetByID(ctx, race.RaceID)
	if err != nil {
		t.Fatalf("failed to retrieve race: %v", err)
	}

	if retrieved.RaceID != race.RaceID {
		t.Errorf("expected race ID %v, got %v", race.RaceID, retrieved.RaceID)
	}
	if retrieved.Venue != race.Venue {
		t.Errorf("expected venue %s, got %s", race.Venue, retrieved.Venue)
	}
}

// TestRaceRepositoryEntries tests entry upsert and retrieval ordering
func TestRaceRepositoryEntries(t *testing.T) {
	db := integrationDB(t)
	defer database.TeardownTestDB(t, db)

	repos := NewRepositories(db)
	raceID := uuid.New()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := []models.EntryView{
		{HorseID: uuid.New(), HorseName: "b", HorseNumber: 2, RunningStyle: models.StyleFront, Odds: 4.5, Popularity: 2},
		{HorseID: uuid.New(), HorseName: "a", HorseNumber: 1, RunningStyle: models.StyleEscape, Odds: 2.0, Popularity: 1},
	}

	if err := repos.Race.UpsertEntries(ctx, raceID, entries); err != nil {
		t.Fatalf("failed to upsert entries: %v", err)
	}

	got, err := repos.Race.GetEntries(ctx, raceID)
	if err != nil {
		t.Fatalf("failed to get entries: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].HorseNumber != 1 {
		t.Errorf("expected entries ordered by horse number, got %d first", got[0].HorseNumber)
	}
}

// TestPredictionRepositoryHistory tests prediction persistence ordering
func TestPredictionRepositoryHistory(t *testing.T) {
	db := integrationDB(t)
	defer database.TeardownTestDB(t, db)

	repos := NewRepositories(db)
	raceID := uuid.New()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		result := &models.PredictionResult{
			ID:           uuid.New(),
			RaceID:       raceID,
			ModelVersion: "2.0.0",
			PredictedAt:  time.Now().Add(time.Duration(i) * time.Minute),
			Rankings: []models.HorsePrediction{
				{Rank: 1, HorseNumber: 1, Score: 0.5},
			},
			ConfidenceScore: 0.7,
		}
		if err := repos.Prediction.Save(ctx, result); err != nil {
			t.Fatalf("failed to save prediction %d: %v", i, err)
		}
	}

	latest, err := repos.Prediction.GetLatest(ctx, raceID)
	if err != nil {
		t.Fatalf("failed to get latest prediction: %v", err)
	}
	if len(latest.Rankings) != 1 {
		t.Errorf("expected payload rankings to round-trip, got %d rows", len(latest.Rankings))
	}

	history, err := repos.Prediction.ListByRace(ctx, raceID, 10)
	if err != nil {
		t.Fatalf("failed to list predictions: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("expected 3 predictions, got %d", len(history))
	}
}

// TestPredictionRepositoryNotFound tests the missing-race case
func TestPredictionRepositoryNotFound(t *testing.T) {
	db := integrationDB(t)
	defer database.TeardownTestDB(t, db)

	repos := NewRepositories(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := repos.Prediction.GetLatest(ctx, uuid.New())
	if err != models.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
