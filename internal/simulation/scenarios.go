package simulation

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/keiba-predictor/internal/models"
	"github.com/yourusername/keiba-predictor/internal/pace"
)

const (
	scenarioTopN      = 5
	scenarioKeyMax    = 2
	keyPopularityMin  = 6
	heavyAmplifier    = 1.3
	frontFavorsFront  = 0.15
	frontFavorsCloser = -0.10
)

// scenarioOrder fixes the presentation order of the pace what-ifs.
var scenarioOrder = []string{pace.PaceHigh, pace.PaceMiddle, pace.PaceSlow}

// scenarioAdvantaged holds the base advantaged-style list per forced pace,
// before any venue or going adjustment.
var scenarioAdvantaged = map[string][]models.RunningStyle{
	pace.PaceHigh:   {models.StyleStalker, models.StyleCloser},
	pace.PaceMiddle: {models.StyleFront, models.StyleStalker},
	pace.PaceSlow:   {models.StyleEscape, models.StyleFront},
}

// scenarioProbabilities keys the likelihood of each forced pace on the
// predicted bucket.
var scenarioProbabilities = map[string]map[string]float64{
	pace.PaceHigh:   {pace.PaceHigh: 0.6, pace.PaceMiddle: 0.3, pace.PaceSlow: 0.1},
	pace.PaceMiddle: {pace.PaceHigh: 0.25, pace.PaceMiddle: 0.5, pace.PaceSlow: 0.25},
	pace.PaceSlow:   {pace.PaceHigh: 0.1, pace.PaceMiddle: 0.3, pace.PaceSlow: 0.6},
}

var scenarioDescriptions = map[string]string{
	pace.PaceHigh:   "ハイペース想定: 前崩れで差し・追込が台頭",
	pace.PaceMiddle: "ミドルペース想定: 実力通りの決着",
	pace.PaceSlow:   "スローペース想定: 前残りで逃げ・先行有利",
}

// scenarioBase converts odds into a neutral strength proxy for the what-if
// rankings. Shorter odds mean a stronger horse.
func scenarioBase(odds float64) float64 {
	return 1.0 / (1.0 + math.Log(odds+1.0))
}

// buildPaceScenarios recomputes the finish under each forced pace assumption.
// Probabilities come from the fixed table keyed on the predicted bucket and
// sum to 1 across the three scenarios.
func buildPaceScenarios(runners []runner, predicted string) []models.PaceScenario {
	probs, ok := scenarioProbabilities[predicted]
	if !ok {
		probs = scenarioProbabilities[pace.PaceMiddle]
	}

	scenarios := make([]models.PaceScenario, 0, len(scenarioOrder))
	for _, paceType := range scenarioOrder {
		advantaged := scenarioAdvantaged[paceType]
		forced := &pace.Result{PaceType: paceType, AdvantageousStyles: advantaged}

		scores := make([]float64, len(runners))
		for i := range runners {
			scores[i] = clampUnit(scenarioBase(runners[i].odds) * pace.AdvantageScore(runners[i].style, forced))
		}

		scenarios = append(scenarios, models.PaceScenario{
			PaceType:           paceType,
			PaceLabel:          pace.Labels[paceType],
			Probability:        probs[paceType],
			Rankings:           topRankings(runners, scores),
			KeyHorses:          keyLongshots(runners, scores, advantaged, fmt.Sprintf("%sなら浮上", pace.Labels[paceType])),
			AdvantageousStyles: advantaged,
			Description:        scenarioDescriptions[paceType],
		})
	}
	return scenarios
}

// buildConditionScenarios enumerates the finish under each official going.
// Unlike the pace what-ifs this is exhaustive, so no probabilities attach.
func buildConditionScenarios(runners []runner, venue string) []models.TrackConditionScenario {
	venueFront := pace.VenueFor(venue).FrontAdvantage

	scenarios := make([]models.TrackConditionScenario, 0, len(models.TrackConditions))
	for _, cond := range models.TrackConditions {
		totalFront := venueFront + pace.TrackFrontModifier(cond)

		// Heavy going exaggerates the positional bias either way.
		amplifier := 1.0
		if cond == models.TrackHeavy || cond == models.TrackBad {
			amplifier = heavyAmplifier
		}

		scores := make([]float64, len(runners))
		for i := range runners {
			factor := 1.0
			switch runners[i].style {
			case models.StyleEscape, models.StyleFront:
				factor = 1.0 + totalFront
			case models.StyleStalker, models.StyleCloser:
				factor = 1.0 - totalFront
			}
			factor = 1.0 + (factor-1.0)*amplifier
			scores[i] = clampUnit(scenarioBase(runners[i].odds) * factor)
		}

		advantaged := conditionAdvantaged(totalFront)

		scenarios = append(scenarios, models.TrackConditionScenario{
			Condition:          cond,
			FrontAdvantage:     totalFront,
			Rankings:           topRankings(runners, scores),
			KeyHorses:          keyLongshots(runners, scores, advantaged, fmt.Sprintf("%s馬場なら浮上", cond)),
			AdvantageousStyles: advantaged,
			Description:        conditionDescription(cond, totalFront),
		})
	}
	return scenarios
}

func conditionAdvantaged(totalFront float64) []models.RunningStyle {
	switch {
	case totalFront >= frontFavorsFront:
		return []models.RunningStyle{models.StyleEscape, models.StyleFront}
	case totalFront <= frontFavorsCloser:
		return []models.RunningStyle{models.StyleStalker, models.StyleCloser}
	}
	return []models.RunningStyle{models.StyleFront, models.StyleStalker}
}

func conditionDescription(cond models.TrackCondition, totalFront float64) string {
	switch {
	case totalFront >= frontFavorsFront:
		return fmt.Sprintf("%s馬場想定: 時計がかかり前残り傾向", cond)
	case totalFront <= frontFavorsCloser:
		return fmt.Sprintf("%s馬場想定: 差し・追込の決め手が活きる", cond)
	}
	return fmt.Sprintf("%s馬場想定: 大きな偏りなし", cond)
}

// topRankings sorts the field by scenario score and keeps the first five.
// Ties keep starting order.
func topRankings(runners []runner, scores []float64) []models.ScenarioRanking {
	order := make([]int, len(runners))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	limit := min(scenarioTopN, len(order))
	rankings := make([]models.ScenarioRanking, 0, limit)
	for rank, idx := range order[:limit] {
		rankings = append(rankings, models.ScenarioRanking{
			Rank:        rank + 1,
			HorseNumber: runners[idx].number,
			HorseName:   runners[idx].name,
			Score:       scores[idx],
		})
	}
	return rankings
}

// keyLongshots surfaces up to two unfancied horses whose style suits the
// scenario, strongest scenario score first. Ties keep starting order.
func keyLongshots(runners []runner, scores []float64, advantaged []models.RunningStyle, reason string) []models.ScenarioKeyHorse {
	order := make([]int, len(runners))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var keys []models.ScenarioKeyHorse
	for _, i := range order {
		if runners[i].popularity < keyPopularityMin {
			continue
		}
		matched := false
		for _, style := range advantaged {
			if runners[i].style == style {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		keys = append(keys, models.ScenarioKeyHorse{
			HorseNumber: runners[i].number,
			HorseName:   runners[i].name,
			Reason:      reason,
		})
		if len(keys) == scenarioKeyMax {
			break
		}
	}
	return keys
}

func clampUnit(v float64) float64 {
	return math.Min(math.Max(v, 0.0), 1.0)
}
