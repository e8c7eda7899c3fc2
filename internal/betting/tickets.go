// Package betting builds wagering-ticket recommendations from a ranked
// prediction. Two ticket shapes are produced: a trio keyed to two pivot
// horses and a trifecta multi covering every ordering of the same pivots.
package betting

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourusername/keiba-predictor/internal/models"
	"github.com/yourusername/keiba-predictor/internal/pace"
	"github.com/yourusername/keiba-predictor/internal/scoring"
)

// Ticket pricing in yen per combination.
var (
	trioUnitStake     = decimal.NewFromInt(1000)
	trifectaUnitStake = decimal.NewFromInt(200)
)

// Value-pivot selection thresholds.
const (
	valuePopularityMin = 6
	fallbackOdds       = 10.0

	// Pace-fit multipliers for the expected-value ranking of candidates.
	paceFitFirstChoice = 1.5
	paceFitAdvantaged  = 1.2
	paceFitNeutral     = 1.0

	// Trifecta multi: 3 finishing slots with 2 fixed pivots and 1 floater
	// admit 3! = 6 orderings per floater.
	trifectaOrderings = 6
)

// GenerateTickets builds the recommended bet for a race. Fields with fewer
// than three ranked horses get an empty recommendation.
func GenerateTickets(
	rankings []models.HorsePrediction,
	analyses []scoring.HorseAnalysis,
	p *pace.Result,
	race models.RaceContext,
) *models.BetTicketSet {
	if len(rankings) < 3 {
		return &models.BetTicketSet{TotalInvestment: decimal.Zero}
	}

	pivot1 := rankings[0]
	pivot2 := selectValuePivot(rankings, analyses, p)

	// Trio partners come from ranks 2-6, trifecta partners from ranks 2-5,
	// both skipping the value pivot.
	othersTrio := partnersExcluding(rankings[1:min(6, len(rankings))], pivot2.HorseNumber, 4)
	othersTrifecta := partnersExcluding(rankings[1:min(5, len(rankings))], pivot2.HorseNumber, 3)

	trio := &models.BetTicket{
		Type:            models.TicketTrioPivot2Nagashi,
		Pivots:          []int{pivot1.HorseNumber, pivot2.HorseNumber},
		Others:          othersTrio,
		Combinations:    len(othersTrio),
		AmountPerTicket: trioUnitStake,
	}

	trifectaMulti := &models.BetTicket{
		Type:            models.TicketTrifectaPivot2Multi,
		Pivots:          []int{pivot1.HorseNumber, pivot2.HorseNumber},
		Others:          othersTrifecta,
		Combinations:    len(othersTrifecta) * trifectaOrderings,
		AmountPerTicket: trifectaUnitStake,
	}

	total := trio.Cost().Add(trifectaMulti.Cost())

	return &models.BetTicketSet{
		Trio:            trio,
		TrifectaMulti:   trifectaMulti,
		TotalInvestment: total,
		Note:            buildNote(pivot1, pivot2, p, race),
	}
}

// selectValuePivot picks the second pivot by expected value over the
// dark-horse candidates. Odds enter the expected value only; they never
// touch the score itself.
func selectValuePivot(
	rankings []models.HorsePrediction,
	analyses []scoring.HorseAnalysis,
	p *pace.Result,
) models.HorsePrediction {
	if len(rankings) < 2 {
		return rankings[0]
	}

	styleByNumber := make(map[int]models.RunningStyle, len(analyses))
	for i := range analyses {
		styleByNumber[analyses[i].HorseNumber] = analyses[i].RunningStyle
	}

	scores := make([]float64, len(rankings))
	for i, r := range rankings {
		scores[i] = r.Score
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	top40Threshold := scores[max(0, int(float64(len(scores))*0.4)-1)]

	var (
		best         *models.HorsePrediction
		bestExpected float64
	)
	for i := range rankings {
		r := &rankings[i]
		if r.Popularity == 0 {
			continue
		}

		isCandidate := r.IsDarkHorse ||
			(r.Popularity >= valuePopularityMin && r.Score >= top40Threshold)
		if !isCandidate {
			continue
		}

		paceFit := paceFitNeutral
		if style, ok := styleByNumber[r.HorseNumber]; ok {
			for j, s := range p.AdvantageousStyles {
				if s == style {
					if j == 0 {
						paceFit = paceFitFirstChoice
					} else {
						paceFit = paceFitAdvantaged
					}
					break
				}
			}
		}

		odds := r.Odds
		if odds == 0 {
			odds = fallbackOdds
		}
		expected := odds * r.Score * paceFit

		if best == nil || expected > bestExpected {
			best = r
			bestExpected = expected
		}
	}

	if best != nil {
		return *best
	}

	// No value candidate: fall back to the second-ranked horse.
	return rankings[1]
}

func partnersExcluding(rankings []models.HorsePrediction, excludeNumber, limit int) []int {
	numbers := make([]int, 0, limit)
	for _, r := range rankings {
		if r.HorseNumber == excludeNumber {
			continue
		}
		numbers = append(numbers, r.HorseNumber)
		if len(numbers) == limit {
			break
		}
	}
	return numbers
}

func buildNote(pivot1, pivot2 models.HorsePrediction, p *pace.Result, race models.RaceContext) string {
	parts := []string{
		fmt.Sprintf("軸: %d番(本命)+%d番(穴)", pivot1.HorseNumber, pivot2.HorseNumber),
	}

	label, ok := pace.Labels[p.PaceType]
	if !ok {
		label = p.PaceType
	}
	parts = append(parts, fmt.Sprintf("展開: %s予想", label))

	if race.Venue != "" {
		frontAdvantage := pace.VenueFor(race.Venue).FrontAdvantage
		if frontAdvantage >= 0.15 {
			parts = append(parts, fmt.Sprintf("%sは前有利", race.Venue))
		} else if frontAdvantage <= -0.10 {
			parts = append(parts, fmt.Sprintf("%sは差し有利", race.Venue))
		}
	}
	if cond := race.TrackCondition; cond != "" && cond != models.TrackGood {
		parts = append(parts, fmt.Sprintf("【%s馬場】前残り警戒", cond))
	}

	note := parts[0]
	for _, p := range parts[1:] {
		note += " / " + p
	}
	return note
}
