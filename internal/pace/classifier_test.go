package pace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/keiba-predictor/internal/models"
)

func styles(tags ...models.RunningStyle) []models.RunningStyle {
	return tags
}

func TestPredictBaseRules(t *testing.T) {
	tests := []struct {
		name             string
		styles           []models.RunningStyle
		wantPace         string
		wantConfidence   float64
		wantAdvantageous []models.RunningStyle
	}{
		{
			name: "three escapes force a high pace",
			styles: styles(
				models.StyleEscape, models.StyleEscape, models.StyleEscape,
				models.StyleFront, models.StyleStalker,
			),
			wantPace:         PaceHigh,
			wantConfidence:   0.85,
			wantAdvantageous: styles(models.StyleStalker, models.StyleCloser),
		},
		{
			name: "two escapes still mean high pace with less conviction",
			styles: styles(
				models.StyleEscape, models.StyleEscape,
				models.StyleStalker, models.StyleCloser,
			),
			wantPace:         PaceHigh,
			wantConfidence:   0.7,
			wantAdvantageous: styles(models.StyleStalker, models.StyleCloser),
		},
		{
			name: "no escape horse guarantees a slow pace",
			styles: styles(
				models.StyleFront, models.StyleFront, models.StyleFront,
				models.StyleStalker, models.StyleCloser,
			),
			wantPace:         PaceSlow,
			wantConfidence:   0.8,
			wantAdvantageous: styles(models.StyleFront, models.StyleStalker),
		},
		{
			name: "lone escape with a thin front rank settles down",
			styles: styles(
				models.StyleEscape, models.StyleFront, models.StyleFront,
				models.StyleStalker, models.StyleCloser,
			),
			wantPace:         PaceSlow,
			wantConfidence:   0.75,
			wantAdvantageous: styles(models.StyleEscape, models.StyleFront),
		},
		{
			name: "lone escape behind a crowded front rank",
			styles: styles(
				models.StyleEscape,
				models.StyleFront, models.StyleFront, models.StyleFront,
				models.StyleFront, models.StyleFront,
				models.StyleStalker,
			),
			wantPace:         PaceMiddle,
			wantConfidence:   0.6,
			wantAdvantageous: styles(models.StyleFront, models.StyleStalker),
		},
		{
			name: "anything else is a middle pace",
			styles: styles(
				models.StyleEscape,
				models.StyleFront, models.StyleFront, models.StyleFront,
				models.StyleStalker,
			),
			wantPace:         PaceMiddle,
			wantConfidence:   0.5,
			wantAdvantageous: styles(models.StyleFront, models.StyleStalker),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Predict(Request{
				RunningStyles: tt.styles,
				Distance:      2000,
				CourseType:    models.CourseTurf,
			})

			assert.Equal(t, tt.wantPace, result.PaceType)
			assert.InDelta(t, tt.wantConfidence, result.Confidence, 1e-9)
			assert.Equal(t, tt.wantAdvantageous, result.AdvantageousStyles)
		})
	}
}

func TestPredictNakayamaHighPace(t *testing.T) {
	// 3 escapes at 中山 on 良 going: high pace, base confidence 0.85 plus the
	// +0.05 venue bonus. The ESCAPE insertion rule only fires on slow paces,
	// so the advantaged list stays [STALKER, CLOSER].
	field := styles(
		models.StyleEscape, models.StyleEscape, models.StyleEscape,
		models.StyleFront, models.StyleFront,
		models.StyleStalker, models.StyleStalker, models.StyleStalker,
		models.StyleCloser, models.StyleCloser,
	)

	result := Predict(Request{
		RunningStyles:  field,
		Distance:       2000,
		CourseType:     models.CourseTurf,
		Venue:          "中山",
		TrackCondition: models.TrackGood,
	})

	assert.Equal(t, PaceHigh, result.PaceType)
	assert.InDelta(t, 0.90, result.Confidence, 1e-9)
	assert.Equal(t, styles(models.StyleStalker, models.StyleCloser), result.AdvantageousStyles)
	assert.Equal(t, 3, result.EscapeCount)
	assert.InDelta(t, 0.15, result.VenueAdjustment, 1e-9)
	assert.InDelta(t, 0.0, result.TrackConditionAdjustment, 1e-9)
}

func TestPredictNoEscapeThreeFront(t *testing.T) {
	field := styles(
		models.StyleFront, models.StyleFront, models.StyleFront,
		models.StyleStalker, models.StyleStalker, models.StyleStalker,
		models.StyleCloser, models.StyleCloser,
		models.StyleVersatile, models.StyleVersatile,
	)

	result := Predict(Request{
		RunningStyles: field,
		Distance:      2000,
		CourseType:    models.CourseTurf,
	})

	assert.Equal(t, PaceSlow, result.PaceType)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
	assert.Equal(t, styles(models.StyleFront, models.StyleStalker), result.AdvantageousStyles)
}

func TestPredictEscapeQualityAdjustments(t *testing.T) {
	highField := styles(models.StyleEscape, models.StyleEscape, models.StyleEscape, models.StyleStalker)

	t.Run("strong favorite on the lead lowers high-pace confidence", func(t *testing.T) {
		result := Predict(Request{
			RunningStyles:      highField,
			Distance:           2000,
			CourseType:         models.CourseTurf,
			EscapePopularities: []int{1, 9, 12},
		})
		assert.Equal(t, PaceHigh, result.PaceType)
		assert.InDelta(t, 0.75, result.Confidence, 1e-9)
		assert.Contains(t, result.Reason, "人気馬の逃げ")
	})

	t.Run("weak lone leader lowers slow-pace confidence", func(t *testing.T) {
		result := Predict(Request{
			RunningStyles: styles(
				models.StyleEscape, models.StyleFront,
				models.StyleStalker, models.StyleCloser,
			),
			Distance:           2000,
			CourseType:         models.CourseTurf,
			EscapePopularities: []int{11},
		})
		assert.Equal(t, PaceSlow, result.PaceType)
		assert.InDelta(t, 0.65, result.Confidence, 1e-9)
		assert.Contains(t, result.Reason, "暴走の可能性")
	})
}

func TestPredictDistanceAdjustments(t *testing.T) {
	highField := styles(models.StyleEscape, models.StyleEscape, models.StyleEscape, models.StyleStalker)

	long := Predict(Request{RunningStyles: highField, Distance: 2500, CourseType: models.CourseTurf})
	assert.InDelta(t, 0.75, long.Confidence, 1e-9)

	slowField := styles(models.StyleFront, models.StyleStalker, models.StyleCloser)
	sprint := Predict(Request{RunningStyles: slowField, Distance: 1200, CourseType: models.CourseTurf})
	assert.Equal(t, PaceSlow, sprint.PaceType)
	assert.InDelta(t, 0.7, sprint.Confidence, 1e-9)
}

func TestPredictDirtInsertsFront(t *testing.T) {
	// High pace advantaged list [STALKER, CLOSER] has no forward style, so a
	// dirt race must insert FRONT at the head of the list.
	result := Predict(Request{
		RunningStyles: styles(models.StyleEscape, models.StyleEscape, models.StyleStalker, models.StyleCloser),
		Distance:      1800,
		CourseType:    models.CourseDirt,
	})

	require.NotEmpty(t, result.AdvantageousStyles)
	assert.Equal(t, models.StyleFront, result.AdvantageousStyles[0])
}

func TestPredictVenueAdjustments(t *testing.T) {
	t.Run("front-favoring venue inserts ESCAPE on slow pace", func(t *testing.T) {
		result := Predict(Request{
			RunningStyles: styles(models.StyleFront, models.StyleStalker, models.StyleCloser),
			Distance:      2000,
			CourseType:    models.CourseTurf,
			Venue:         "小倉",
		})
		assert.Equal(t, PaceSlow, result.PaceType)
		assert.Equal(t, models.StyleEscape, result.AdvantageousStyles[0])
		assert.InDelta(t, 0.85, result.Confidence, 1e-9)
	})

	t.Run("closer-favoring venue appends CLOSER on high pace", func(t *testing.T) {
		result := Predict(Request{
			RunningStyles: styles(models.StyleEscape, models.StyleEscape, models.StyleEscape, models.StyleFront),
			Distance:      2000,
			CourseType:    models.CourseTurf,
			Venue:         "新潟",
		})
		assert.Equal(t, PaceHigh, result.PaceType)
		assert.Contains(t, result.AdvantageousStyles, models.StyleCloser)
	})

	t.Run("heavy going adds its modifier to the venue advantage", func(t *testing.T) {
		// 東京 -0.10 + 重 0.10 = 0.0: neither venue branch fires.
		result := Predict(Request{
			RunningStyles:  styles(models.StyleEscape, models.StyleEscape, models.StyleEscape, models.StyleFront),
			Distance:       2000,
			CourseType:     models.CourseTurf,
			Venue:          "東京",
			TrackCondition: models.TrackHeavy,
		})
		assert.InDelta(t, 0.0, result.TotalFrontAdvantage(), 1e-9)
		assert.NotContains(t, result.AdvantageousStyles, models.StyleCloser)
	})
}

func TestPredictConfidenceClamped(t *testing.T) {
	for _, field := range [][]models.RunningStyle{
		styles(models.StyleEscape, models.StyleEscape, models.StyleEscape),
		styles(models.StyleFront, models.StyleFront),
		styles(models.StyleVersatile),
	} {
		result := Predict(Request{RunningStyles: field, Distance: 1000, CourseType: models.CourseDirt, Venue: "函館", TrackCondition: models.TrackBad})
		assert.GreaterOrEqual(t, result.Confidence, 0.3)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	}
}

func TestAdvantageScore(t *testing.T) {
	result := Result{
		PaceType:           PaceHigh,
		AdvantageousStyles: styles(models.StyleStalker, models.StyleCloser),
	}

	assert.InDelta(t, 1.2, AdvantageScore(models.StyleStalker, &result), 1e-9)
	assert.InDelta(t, 1.15, AdvantageScore(models.StyleCloser, &result), 1e-9)
	assert.InDelta(t, 0.85, AdvantageScore(models.StyleEscape, &result), 1e-9)
	assert.InDelta(t, 0.85, AdvantageScore(models.StyleFront, &result), 1e-9)
	assert.InDelta(t, 1.0, AdvantageScore(models.StyleVersatile, &result), 1e-9)

	slow := Result{
		PaceType:           PaceSlow,
		AdvantageousStyles: styles(models.StyleEscape, models.StyleFront),
	}
	assert.InDelta(t, 0.85, AdvantageScore(models.StyleCloser, &slow), 1e-9)
	assert.InDelta(t, 1.0, AdvantageScore("", &slow), 1e-9)
}

func TestAdvantageScoreListPositions(t *testing.T) {
	result := Result{
		PaceType: PaceSlow,
		AdvantageousStyles: styles(
			models.StyleEscape, models.StyleFront,
			models.StyleStalker, models.StyleCloser,
		),
	}

	want := []float64{1.2, 1.15, 1.10, 1.05}
	for i, s := range result.AdvantageousStyles {
		assert.InDelta(t, want[i], AdvantageScore(s, &result), 1e-9)
	}
}
