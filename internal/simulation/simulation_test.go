package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/keiba-predictor/internal/models"
	"github.com/yourusername/keiba-predictor/internal/pace"
	"github.com/yourusername/keiba-predictor/internal/scoring"
)

func highPaceResult() *pace.Result {
	return &pace.Result{
		PaceType:           pace.PaceHigh,
		Confidence:         0.8,
		AdvantageousStyles: []models.RunningStyle{models.StyleStalker, models.StyleCloser},
	}
}

// smallField is one horse per basic style, short odds up front.
func smallField() []scoring.HorseAnalysis {
	return scoring.Analyze([]models.EntryView{
		{HorseName: "escape", HorseNumber: 1, RunningStyle: models.StyleEscape, Odds: 2.0, Popularity: 1},
		{HorseName: "front", HorseNumber: 2, RunningStyle: models.StyleFront, Odds: 4.0, Popularity: 2},
		{HorseName: "stalker", HorseNumber: 3, RunningStyle: models.StyleStalker, Odds: 6.0, Popularity: 3},
		{HorseName: "closer", HorseNumber: 4, RunningStyle: models.StyleCloser, Odds: 8.0, Popularity: 4},
	})
}

func TestBuildRejectsEmptyField(t *testing.T) {
	_, err := Build(nil, models.RaceContext{}, highPaceResult())
	assert.ErrorIs(t, err, models.ErrNoEntries)
}

func TestCheckpointSequence(t *testing.T) {
	sim, err := Build(smallField(), models.RaceContext{Venue: "中山", Distance: 2000}, highPaceResult())
	require.NoError(t, err)

	require.Len(t, sim.CornerPositions, 5)
	names := make([]string, 0, 5)
	for _, c := range sim.CornerPositions {
		names = append(names, c.CornerName)
	}
	assert.Equal(t, []string{"1コーナー", "2コーナー", "3コーナー", "4コーナー", "ゴール"}, names)

	// Every checkpoint ranks the full field densely with half-length gaps.
	for _, c := range sim.CornerPositions {
		require.Len(t, c.Horses, 4)
		for i, h := range c.Horses {
			assert.Equal(t, i+1, h.Position, "%s slot %d", c.CornerName, i)
			assert.InDelta(t, float64(i)*0.5, h.DistanceFromLeader, 1e-9)
		}
	}

	// Off the gate the field strings out in style order.
	first := sim.CornerPositions[0]
	assert.Equal(t, []int{1, 2, 3, 4}, horseNumbers(first.Horses))

	// Under a high pace the stalker runs down the front runner by the line:
	// escape, stalker, front, closer.
	goal := sim.CornerPositions[4]
	assert.Equal(t, []int{1, 3, 2, 4}, horseNumbers(goal.Horses))
}

func horseNumbers(horses []models.HorsePosition) []int {
	numbers := make([]int, 0, len(horses))
	for _, h := range horses {
		numbers = append(numbers, h.HorseNumber)
	}
	return numbers
}

func TestBuildIsDeterministic(t *testing.T) {
	race := models.RaceContext{Venue: "東京", Distance: 1600}
	a, err := Build(smallField(), race, highPaceResult())
	require.NoError(t, err)
	b, err := Build(smallField(), race, highPaceResult())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStartFormationGrouping(t *testing.T) {
	analyses := scoring.Analyze([]models.EntryView{
		{HorseNumber: 1, RunningStyle: models.StyleEscape},
		{HorseNumber: 2, RunningStyle: models.StyleEscape},
		{HorseNumber: 3, RunningStyle: models.StyleEscape},
		{HorseNumber: 4, RunningStyle: models.StyleEscape},
		{HorseNumber: 5, RunningStyle: models.StyleEscape},
		{HorseNumber: 6, RunningStyle: models.StyleStalker},
		{HorseNumber: 7, RunningStyle: models.StyleVersatile},
		{HorseNumber: 8, RunningStyle: models.StyleCloser},
	})

	formation := buildFormation(newRunners(analyses))

	assert.Equal(t, 8, formation.TotalHorses)
	require.Len(t, formation.Rows, 4)

	// Five escapers split across two 先頭 rows at a width of four.
	assert.Equal(t, "先頭", formation.Rows[0].RowLabel)
	assert.Len(t, formation.Rows[0].Horses, 4)
	assert.Equal(t, "先頭", formation.Rows[1].RowLabel)
	assert.Len(t, formation.Rows[1].Horses, 1)

	// Stalker and versatile share the midfield row.
	assert.Equal(t, "中団", formation.Rows[2].RowLabel)
	assert.Len(t, formation.Rows[2].Horses, 2)

	assert.Equal(t, "後方", formation.Rows[3].RowLabel)
	for i, row := range formation.Rows {
		assert.Equal(t, i+1, row.RowIndex)
	}
}

func TestPaceScenarioProbabilities(t *testing.T) {
	runners := newRunners(smallField())

	for _, predicted := range []string{pace.PaceHigh, pace.PaceMiddle, pace.PaceSlow} {
		scenarios := buildPaceScenarios(runners, predicted)
		require.Len(t, scenarios, 3, "predicted %s", predicted)

		sum := 0.0
		for _, s := range scenarios {
			sum += s.Probability
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "predicted %s", predicted)
	}

	scenarios := buildPaceScenarios(runners, pace.PaceHigh)
	assert.InDelta(t, 0.6, scenarios[0].Probability, 1e-9)
	assert.InDelta(t, 0.3, scenarios[1].Probability, 1e-9)
	assert.InDelta(t, 0.1, scenarios[2].Probability, 1e-9)
	assert.Equal(t, pace.PaceHigh, scenarios[0].PaceType)
	assert.Equal(t,
		[]models.RunningStyle{models.StyleStalker, models.StyleCloser},
		scenarios[0].AdvantageousStyles)
}

func TestPaceScenarioKeyLongshots(t *testing.T) {
	analyses := scoring.Analyze([]models.EntryView{
		{HorseName: "fav", HorseNumber: 1, RunningStyle: models.StyleEscape, Odds: 2.0, Popularity: 1},
		{HorseName: "mid", HorseNumber: 2, RunningStyle: models.StyleFront, Odds: 5.0, Popularity: 3},
		{HorseName: "sleeper", HorseNumber: 3, RunningStyle: models.StyleStalker, Odds: 22.0, Popularity: 7},
		{HorseName: "outsider", HorseNumber: 4, RunningStyle: models.StyleCloser, Odds: 41.0, Popularity: 9},
		{HorseName: "forlorn", HorseNumber: 5, RunningStyle: models.StyleCloser, Odds: 88.0, Popularity: 11},
	})
	runners := newRunners(analyses)

	scenarios := buildPaceScenarios(runners, pace.PaceMiddle)

	// High-pace scenario: the unfancied stalker and the first closer, capped
	// at two.
	high := scenarios[0]
	require.Len(t, high.KeyHorses, 2)
	assert.Equal(t, 3, high.KeyHorses[0].HorseNumber)
	assert.Equal(t, 4, high.KeyHorses[1].HorseNumber)
	assert.Contains(t, high.KeyHorses[0].Reason, "浮上")

	// Slow-pace scenario advantages ESCAPE/FRONT, all of which are fancied.
	slow := scenarios[2]
	assert.Empty(t, slow.KeyHorses)
}

func TestKeyLongshotsPreferStrongerScores(t *testing.T) {
	// Three closers qualify under a high pace; the weakest is drawn first.
	// The two shortest-priced qualifiers must surface, not the first two in
	// starting order.
	analyses := scoring.Analyze([]models.EntryView{
		{HorseName: "forlorn", HorseNumber: 1, RunningStyle: models.StyleCloser, Odds: 88.0, Popularity: 11},
		{HorseName: "fav", HorseNumber: 2, RunningStyle: models.StyleEscape, Odds: 2.0, Popularity: 1},
		{HorseName: "sleeper", HorseNumber: 3, RunningStyle: models.StyleCloser, Odds: 22.0, Popularity: 7},
		{HorseName: "outsider", HorseNumber: 4, RunningStyle: models.StyleCloser, Odds: 41.0, Popularity: 9},
	})
	runners := newRunners(analyses)

	scenarios := buildPaceScenarios(runners, pace.PaceMiddle)

	high := scenarios[0]
	require.Len(t, high.KeyHorses, 2)
	assert.Equal(t, 3, high.KeyHorses[0].HorseNumber)
	assert.Equal(t, 4, high.KeyHorses[1].HorseNumber)
}

func TestPaceScenarioTopFive(t *testing.T) {
	entries := make([]models.EntryView, 0, 8)
	for i := 1; i <= 8; i++ {
		entries = append(entries, models.EntryView{
			HorseNumber:  i,
			RunningStyle: models.StyleVersatile,
			Odds:         float64(i) * 2,
			Popularity:   i,
		})
	}
	runners := newRunners(scoring.Analyze(entries))

	scenarios := buildPaceScenarios(runners, pace.PaceMiddle)
	for _, s := range scenarios {
		require.Len(t, s.Rankings, 5)
		for i, r := range s.Rankings {
			assert.Equal(t, i+1, r.Rank)
			if i > 0 {
				assert.LessOrEqual(t, r.Score, s.Rankings[i-1].Score)
			}
		}
	}
}

func TestConditionScenarios(t *testing.T) {
	runners := newRunners(smallField())

	t.Run("front-favoring venue", func(t *testing.T) {
		scenarios := buildConditionScenarios(runners, "中山")
		require.Len(t, scenarios, 4)

		// 中山 carries +0.15 front advantage even on good going.
		good := scenarios[0]
		assert.Equal(t, models.TrackGood, good.Condition)
		assert.InDelta(t, 0.15, good.FrontAdvantage, 1e-9)
		assert.Equal(t,
			[]models.RunningStyle{models.StyleEscape, models.StyleFront},
			good.AdvantageousStyles)

		// Heavy going stacks its +0.10 on top and amplifies the bias.
		heavy := scenarios[2]
		assert.Equal(t, models.TrackHeavy, heavy.Condition)
		assert.InDelta(t, 0.25, heavy.FrontAdvantage, 1e-9)

		// Escape, odds 2.0: base 1/(1+ln 3) times 1+(0.25)*1.3.
		escapeScore := heavy.Rankings[0]
		assert.Equal(t, 1, escapeScore.HorseNumber)
		assert.InDelta(t, (1.0/(1.0+1.0986122886681098))*1.325, escapeScore.Score, 1e-6)
	})

	t.Run("closer-favoring venue", func(t *testing.T) {
		scenarios := buildConditionScenarios(runners, "東京")

		good := scenarios[0]
		assert.InDelta(t, -0.10, good.FrontAdvantage, 1e-9)
		assert.Equal(t,
			[]models.RunningStyle{models.StyleStalker, models.StyleCloser},
			good.AdvantageousStyles)

		// Rain drags 東京 back toward neutral.
		bad := scenarios[3]
		assert.Equal(t, models.TrackBad, bad.Condition)
		assert.InDelta(t, 0.05, bad.FrontAdvantage, 1e-9)
		assert.Equal(t,
			[]models.RunningStyle{models.StyleFront, models.StyleStalker},
			bad.AdvantageousStyles)
	})
}

func TestAnimationFrames(t *testing.T) {
	sim, err := Build(smallField(), models.RaceContext{Venue: "中山", Distance: 2000}, highPaceResult())
	require.NoError(t, err)

	require.Len(t, sim.AnimationFrames, 61)

	start := sim.AnimationFrames[0]
	finish := sim.AnimationFrames[60]
	assert.InDelta(t, 0.0, start.Time, 1e-9)
	assert.InDelta(t, 1.0, finish.Time, 1e-9)

	// t=0: everyone at the gate, lanes seeded from the style baselines
	// (1.5, 4.0, 7.0, 12.0).
	require.Len(t, start.Horses, 4)
	for _, h := range start.Horses {
		assert.InDelta(t, 0.0, h.Progress, 1e-9)
	}
	assert.Equal(t, 1, start.Horses[0].Lane)
	assert.Equal(t, 2, start.Horses[1].Lane)
	assert.Equal(t, 4, start.Horses[2].Lane)
	assert.Equal(t, 6, start.Horses[3].Lane)

	// t=1: lanes collapse to the goal ranks (1, 3, 2, 4) and drift spreads
	// the displayed progress by final rank.
	assert.Equal(t, 1, finish.Horses[0].Lane)
	assert.Equal(t, 2, finish.Horses[1].Lane)
	assert.Equal(t, 1, finish.Horses[2].Lane)
	assert.Equal(t, 2, finish.Horses[3].Lane)

	assert.InDelta(t, 1.0, finish.Horses[0].Progress, 1e-9)  // rank 1: +6% clamped
	assert.InDelta(t, 0.98, finish.Horses[1].Progress, 1e-9) // rank 3
	assert.InDelta(t, 1.0, finish.Horses[2].Progress, 1e-9)  // rank 2: +2% clamped
	assert.InDelta(t, 0.94, finish.Horses[3].Progress, 1e-9) // rank 4: -6%

	// Time advances in fixed 1/60 steps and progress stays in bounds.
	for i, frame := range sim.AnimationFrames {
		assert.InDelta(t, float64(i)/60.0, frame.Time, 1e-9)
		for _, h := range frame.Horses {
			assert.GreaterOrEqual(t, h.Progress, 0.0)
			assert.LessOrEqual(t, h.Progress, 1.0)
			assert.GreaterOrEqual(t, h.Lane, 1)
			assert.LessOrEqual(t, h.Lane, 8)
		}
	}
}

func TestOddsFallbackForMissingMarket(t *testing.T) {
	analyses := scoring.Analyze([]models.EntryView{
		{HorseNumber: 1, RunningStyle: models.StyleFront, Odds: 3.0, Popularity: 1},
		{HorseNumber: 2, RunningStyle: models.StyleFront}, // no market data
	})
	runners := newRunners(analyses)
	assert.InDelta(t, 50.0, runners[1].odds, 1e-9)

	// The fallback must keep the simulation finite.
	_, _, err := runCheckpoints(runners, highPaceResult())
	assert.NoError(t, err)
}
