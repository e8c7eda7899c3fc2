package scoring

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yourusername/keiba-predictor/internal/models"
	"github.com/yourusername/keiba-predictor/internal/pace"
)

// Dark-horse thresholds: a horse is surfaced as a value pick when its
// predicted rank beats its market popularity by at least the gap, or when an
// unfancied horse still scores in the top half of the field.
const (
	darkHorseRankGap       = 3
	darkHorseMinPopularity = 7
)

// BuildRankings scores every analysed horse, sorts them, and assigns dense
// ranks 1..N. Ties keep the original entry order. The returned flag reports
// whether the ML-blended weighting was applied to the field.
func BuildRankings(
	analyses []HorseAnalysis,
	p *pace.Result,
	race models.RaceContext,
	mlScores map[uuid.UUID]float64,
) ([]models.HorsePrediction, bool) {
	// Field-wide decision: one horse with an ML score switches the whole
	// field onto the blended weights.
	useML := len(mlScores) > 0

	rankings := make([]models.HorsePrediction, 0, len(analyses))
	for i := range analyses {
		a := &analyses[i]

		paceScore := PaceScore(a, p, race.Venue)
		closingScore := ClosingScore(a, p)
		trackScore := TrackRecordScore(a)
		mlScore := mlScores[a.HorseID]

		total := CompositeScore(paceScore, closingScore, trackScore, mlScore, useML)

		rankings = append(rankings, models.HorsePrediction{
			Rank:             1, // assigned after sorting
			HorseID:          a.HorseID,
			HorseName:        a.HorseName,
			HorseNumber:      a.HorseNumber,
			Score:            total,
			WinProbability:   minFloat(total*0.4, 0.5),
			PlaceProbability: minFloat(total*1.2, 0.85),
			Popularity:       a.Popularity,
			Odds:             a.Odds,
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Score > rankings[j].Score
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}

	markDarkHorses(rankings, analyses, p)

	return rankings, useML
}

// markDarkHorses flags value picks by comparing predicted rank against
// market popularity. Popularity is reference data here; it selects which
// horses to surface, it never moves a score.
func markDarkHorses(rankings []models.HorsePrediction, analyses []HorseAnalysis, p *pace.Result) {
	if len(rankings) < 3 {
		return
	}

	analysisByID := make(map[uuid.UUID]*HorseAnalysis, len(analyses))
	for i := range analyses {
		analysisByID[analyses[i].HorseID] = &analyses[i]
	}

	scores := make([]float64, len(rankings))
	for i, r := range rankings {
		scores[i] = r.Score
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	medianScore := scores[len(scores)/2]

	for i := range rankings {
		r := &rankings[i]
		a := analysisByID[r.HorseID]
		if a == nil || r.Popularity == 0 {
			continue
		}

		popularityGap := r.Popularity - r.Rank
		isGapHorse := popularityGap >= darkHorseRankGap
		isValueHorse := r.Popularity >= darkHorseMinPopularity && r.Score >= medianScore

		if !isGapHorse && !isValueHorse {
			continue
		}

		r.IsDarkHorse = true

		var reasons []string
		if containsStyle(p.AdvantageousStyles, a.RunningStyle) {
			if a.RunningStyle == p.AdvantageousStyles[0] {
				reasons = append(reasons, "展開最有利")
			} else {
				reasons = append(reasons, "展開向く")
			}
		}
		if isGapHorse {
			reasons = append(reasons, fmt.Sprintf("人気%d→予測%d位", r.Popularity, r.Rank))
		}

		if len(reasons) > 0 {
			r.DarkHorseReason = joinReasons(reasons)
		} else {
			r.DarkHorseReason = "好走の可能性"
		}
	}
}

func containsStyle(styles []models.RunningStyle, style models.RunningStyle) bool {
	for _, s := range styles {
		if s == style {
			return true
		}
	}
	return false
}

func joinReasons(reasons []string) string {
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "・" + r
	}
	return out
}
