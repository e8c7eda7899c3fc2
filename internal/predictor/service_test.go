package predictor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/keiba-predictor/internal/models"
)

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) PlaceProbabilities(ctx context.Context, raceID uuid.UUID, horseIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	args := m.Called(ctx, raceID, horseIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]float64), args.Error(1)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testRace() models.RaceContext {
	return models.RaceContext{
		RaceID:         uuid.MustParse("6f1b6f1e-58d4-4df0-9a34-0d5a2e9b1c11"),
		Name:           "テスト記念",
		Venue:          "中山",
		CourseType:     models.CourseTurf,
		Distance:       2000,
		TrackCondition: models.TrackGood,
	}
}

func testEntries() []models.EntryView {
	styles := []models.RunningStyle{
		models.StyleEscape, models.StyleFront, models.StyleFront,
		models.StyleStalker, models.StyleStalker, models.StyleCloser,
		models.StyleVersatile, models.StyleCloser,
	}
	entries := make([]models.EntryView, 0, len(styles))
	for i, style := range styles {
		entries = append(entries, models.EntryView{
			HorseID:      uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(i + 1)}),
			HorseName:    "horse",
			HorseNumber:  i + 1,
			PostPosition: i%8 + 1,
			RunningStyle: style,
			Odds:         float64(2 + i*4),
			Popularity:   i + 1,
		})
	}
	return entries
}

func TestPredictValidatesInput(t *testing.T) {
	svc := NewService(quietLogger())

	t.Run("empty field", func(t *testing.T) {
		_, err := svc.Predict(context.Background(), nil, testRace())
		assert.ErrorIs(t, err, models.ErrNoEntries)
	})

	t.Run("duplicate horse number", func(t *testing.T) {
		entries := testEntries()
		entries[3].HorseNumber = entries[0].HorseNumber

		_, err := svc.Predict(context.Background(), entries, testRace())
		assert.ErrorIs(t, err, models.ErrDuplicateHorseNumber)
	})
}

func TestPredictRuleOnly(t *testing.T) {
	svc := NewService(quietLogger())

	result, err := svc.Predict(context.Background(), testEntries(), testRace())
	require.NoError(t, err)

	assert.False(t, result.UsedML)
	assert.Equal(t, DefaultModelVersion, result.ModelVersion)
	assert.Equal(t, testRace().RaceID, result.RaceID)

	require.Len(t, result.Rankings, 8)
	for i, r := range result.Rankings {
		assert.Equal(t, i+1, r.Rank)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
		assert.LessOrEqual(t, r.WinProbability, 0.5)
		assert.LessOrEqual(t, r.PlaceProbability, 0.85)
	}

	require.NotNil(t, result.Pace)
	assert.Contains(t, []string{"slow", "middle", "high"}, result.Pace.Type)

	assert.GreaterOrEqual(t, result.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, result.ConfidenceScore, 1.0)

	require.NotNil(t, result.RecommendedBets)
	assert.NotNil(t, result.RecommendedBets.Trio)
}

func TestPredictConsultsScorer(t *testing.T) {
	entries := testEntries()
	race := testRace()

	scores := map[uuid.UUID]float64{entries[5].HorseID: 0.92}
	scorer := &mockScorer{}
	scorer.On("PlaceProbabilities", mock.Anything, race.RaceID, mock.Anything).
		Return(scores, nil).Once()

	svc := NewService(quietLogger(), WithPlaceScorer(scorer))
	result, err := svc.Predict(context.Background(), entries, race)
	require.NoError(t, err)

	assert.True(t, result.UsedML)
	assert.Contains(t, result.Reasoning, "AI予測モデル")
	scorer.AssertExpectations(t)
}

func TestPredictDegradesWhenScorerFails(t *testing.T) {
	entries := testEntries()
	race := testRace()

	scorer := &mockScorer{}
	scorer.On("PlaceProbabilities", mock.Anything, race.RaceID, mock.Anything).
		Return(nil, errors.New("model host unreachable")).Once()

	svc := NewService(quietLogger(), WithPlaceScorer(scorer))
	result, err := svc.Predict(context.Background(), entries, race)
	require.NoError(t, err)

	assert.False(t, result.UsedML)

	// Degraded output is identical to a rule-only run.
	ruleOnly, err := NewService(quietLogger()).PredictWithScores(entries, race, nil)
	require.NoError(t, err)
	assert.Equal(t, ruleOnly.Rankings, result.Rankings)
	assert.Equal(t, ruleOnly.Reasoning, result.Reasoning)
}

func TestPredictIsDeterministic(t *testing.T) {
	fixed := func() time.Time { return time.Date(2025, 12, 28, 15, 40, 0, 0, time.UTC) }
	svc := NewService(quietLogger(), WithClock(fixed))

	a, err := svc.PredictWithScores(testEntries(), testRace(), nil)
	require.NoError(t, err)
	b, err := svc.PredictWithScores(testEntries(), testRace(), nil)
	require.NoError(t, err)

	// Everything except the generated ID must match exactly.
	b.ID = a.ID
	assert.Equal(t, a, b)
}

func TestReasoningSections(t *testing.T) {
	svc := NewService(quietLogger())

	result, err := svc.Predict(context.Background(), testEntries(), testRace())
	require.NoError(t, err)

	for _, section := range []string{"■展開予想", "■本命", "■対抗・単穴", "■買い目のポイント"} {
		assert.Contains(t, result.Reasoning, section)
	}
	assert.Contains(t, result.Reasoning, "◎")
	assert.NotContains(t, result.Reasoning, "AI予測モデル")
}

func TestSimulateEndToEnd(t *testing.T) {
	svc := NewService(quietLogger())

	sim, err := svc.Simulate(testEntries(), testRace())
	require.NoError(t, err)

	assert.Equal(t, testRace().RaceID, sim.RaceID)
	assert.Len(t, sim.CornerPositions, 5)
	assert.Len(t, sim.Scenarios, 3)
	assert.Len(t, sim.ConditionScenarios, 4)
	assert.Len(t, sim.AnimationFrames, 61)
	assert.Equal(t, 8, sim.StartFormation.TotalHorses)

	sum := 0.0
	for _, s := range sim.Scenarios {
		sum += s.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestSimulateValidatesInput(t *testing.T) {
	svc := NewService(quietLogger())

	_, err := svc.Simulate(nil, testRace())
	assert.ErrorIs(t, err, models.ErrNoEntries)
}
