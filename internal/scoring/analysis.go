// Package scoring turns race entries into a ranked, explainable prediction.
package scoring

import (
	"github.com/google/uuid"

	"github.com/yourusername/keiba-predictor/internal/models"
)

// Baseline proxies shared by every horse in a race. Differentiation must come
// from running-style fit with the predicted pace, never from market odds;
// starting all horses from the same baselines is what prevents the odds from
// silently becoming the prediction.
const (
	baselineAvgLast3F        = 34.0
	baselineBestLast3F       = 33.5
	baselineWinRate          = 0.10
	baselinePlaceRate        = 0.25
	baselineAvgPositionLast5 = 5.0
)

// styleToFirstCorner estimates the first-corner position from running style.
var styleToFirstCorner = map[models.RunningStyle]float64{
	models.StyleEscape:    1.5,
	models.StyleFront:     4.0,
	models.StyleStalker:   7.0,
	models.StyleCloser:    12.0,
	models.StyleVersatile: 8.0,
}

// FirstCornerPosition returns the estimated first-corner position for a style.
func FirstCornerPosition(style models.RunningStyle) float64 {
	if pos, ok := styleToFirstCorner[style]; ok {
		return pos
	}
	return styleToFirstCorner[models.StyleVersatile]
}

// HorseAnalysis is the per-entry view the scorer works from. Odds and
// popularity are reference data only and must not feed any sub-score.
type HorseAnalysis struct {
	HorseID      uuid.UUID
	HorseName    string
	HorseNumber  int
	PostPosition int

	RunningStyle   models.RunningStyle
	AvgFirstCorner float64

	// Closing-sectional proxies (last 3 furlongs).
	AvgLast3F  float64
	BestLast3F float64

	// Track record proxies.
	WinRate          float64
	PlaceRate        float64
	GradeRaceWins    int
	AvgPositionLast5 float64

	// Reference data, never scored.
	Odds       float64
	Popularity int

	HasActualStats bool
}

// Analyze builds a HorseAnalysis per entry from the fixed baselines.
func Analyze(entries []models.EntryView) []HorseAnalysis {
	analyses := make([]HorseAnalysis, 0, len(entries))
	for _, entry := range entries {
		style := entry.EffectiveStyle()
		analyses = append(analyses, HorseAnalysis{
			HorseID:          entry.HorseID,
			HorseName:        entry.HorseName,
			HorseNumber:      entry.HorseNumber,
			PostPosition:     entry.PostPosition,
			RunningStyle:     style,
			AvgFirstCorner:   FirstCornerPosition(style),
			AvgLast3F:        baselineAvgLast3F,
			BestLast3F:       baselineBestLast3F,
			WinRate:          baselineWinRate,
			PlaceRate:        baselinePlaceRate,
			GradeRaceWins:    0,
			AvgPositionLast5: baselineAvgPositionLast5,
			Odds:             entry.Odds,
			Popularity:       entry.Popularity,
			HasActualStats:   false,
		})
	}
	return analyses
}
