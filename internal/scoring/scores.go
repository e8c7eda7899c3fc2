package scoring

import (
	"github.com/yourusername/keiba-predictor/internal/pace"
)

// Score weights. The ML-blended weighting is decided once for the whole
// field: either every horse carries an ML score or none does, so the score
// scales stay coherent within one ranking.
const (
	weightMLBlendML      = 0.45
	weightMLBlendPace    = 0.35
	weightMLBlendClosing = 0.10
	weightMLBlendTrack   = 0.10

	weightRulePace    = 0.50
	weightRuleClosing = 0.25
	weightRuleTrack   = 0.25
)

// Pace-score tuning constants. These are deliberate domain calibrations;
// changing them changes the model.
const (
	paceScoreFloor        = 0.05
	paceScoreCeil         = 0.50
	paceBaseAdvantaged    = 0.30
	paceBaseFirstChoice   = 0.35
	paceBaseDisadvantaged = 0.10

	sharpClosingThreshold = 33.5 // best last 3F that counts as a real kick
	forwardPositionMax    = 5.0  // first-corner position that holds up a slow race
	closingScoreCeil      = 0.40
	trackRecordScoreCeil  = 0.40
)

// PaceScore rates how well a horse's style fits the predicted race shape,
// including venue and going front advantage and the draw. Range [0.05, 0.5].
func PaceScore(a *HorseAnalysis, p *pace.Result, venue string) float64 {
	style := a.RunningStyle

	base := paceBaseDisadvantaged
	for i, s := range p.AdvantageousStyles {
		if s == style {
			if i == 0 {
				base = paceBaseFirstChoice
			} else {
				base = paceBaseAdvantaged
			}
			break
		}
	}

	// Venue front advantage rewards forward styles and taxes backmarkers.
	if style.IsForward() {
		base += p.VenueAdjustment * 0.3
	} else if style.IsBackmarker() {
		base -= p.VenueAdjustment * 0.2
	}

	// Going does the same with a smaller lever.
	if style.IsForward() {
		base += p.TrackConditionAdjustment * 0.2
	} else if style.IsBackmarker() {
		base -= p.TrackConditionAdjustment * 0.15
	}

	base *= pace.PostPositionEffect(a.PostPosition, style, venue)

	// A real finishing kick matters more when the pace collapses up front.
	if p.PaceType == pace.PaceHigh && a.BestLast3F <= sharpClosingThreshold {
		base += 0.1
	}

	// A forward position holds up when nothing forces the tempo.
	if p.PaceType == pace.PaceSlow && a.AvgFirstCorner <= forwardPositionMax {
		base += 0.1
	}

	return clamp(base, paceScoreFloor, paceScoreCeil)
}

// ClosingScore rates finishing-kick ability from the last-3F proxies,
// discounted by instability and boosted under a high pace. Range [0, 0.4].
func ClosingScore(a *HorseAnalysis, p *pace.Result) float64 {
	var score float64
	switch {
	case a.BestLast3F <= 32.5:
		score = 0.35
	case a.BestLast3F <= 33.0:
		score = 0.30
	case a.BestLast3F <= 33.5:
		score = 0.25
	case a.BestLast3F <= 34.0:
		score = 0.20
	case a.BestLast3F <= 34.5:
		score = 0.15
	default:
		score = 0.10
	}

	// Stability: a horse whose average sits close to its best repeats the kick.
	stability := 1.0 - minFloat((a.AvgLast3F-a.BestLast3F)/2.0, 0.3)
	score *= stability

	if p.PaceType == pace.PaceHigh {
		score *= 1.2
	}

	return minFloat(score, closingScoreCeil)
}

// TrackRecordScore rates career form: win rate, place rate, and graded wins.
// Range [0, 0.4].
func TrackRecordScore(a *HorseAnalysis) float64 {
	score := a.WinRate*0.4 + a.PlaceRate*0.3

	switch {
	case a.GradeRaceWins >= 3:
		score += 0.30
	case a.GradeRaceWins >= 1:
		score += 0.20
	default:
		score += 0.05
	}

	return minFloat(score, trackRecordScoreCeil)
}

// CompositeScore blends the sub-scores into the final [0, 1] score. useML
// must reflect the field-wide decision, not the presence of this horse's
// ML score.
func CompositeScore(paceScore, closingScore, trackScore, mlScore float64, useML bool) float64 {
	var total float64
	if useML {
		total = mlScore*weightMLBlendML +
			paceScore*weightMLBlendPace +
			closingScore*weightMLBlendClosing +
			trackScore*weightMLBlendTrack
	} else {
		total = paceScore*weightRulePace +
			closingScore*weightRuleClosing +
			trackScore*weightRuleTrack
	}
	return clamp(total, 0.0, 1.0)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
