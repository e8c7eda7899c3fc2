package pace

import (
	"fmt"

	"github.com/yourusername/keiba-predictor/internal/models"
)

// Pace buckets.
const (
	PaceSlow   = "slow"
	PaceMiddle = "middle"
	PaceHigh   = "high"
)

// Labels maps a pace bucket to its display label.
var Labels = map[string]string{
	PaceSlow:   "スローペース",
	PaceMiddle: "ミドルペース",
	PaceHigh:   "ハイペース",
}

// Confidence bounds for a pace prediction.
const (
	minConfidence = 0.3
	maxConfidence = 1.0
)

// Request carries everything the classifier needs about a race.
type Request struct {
	RunningStyles  []models.RunningStyle
	Distance       int
	CourseType     models.CourseType
	Venue          string
	TrackCondition models.TrackCondition
	// EscapePopularities holds the popularity rank of each ESCAPE-style
	// entry, used to judge whether the leader can control the tempo.
	EscapePopularities []int
}

// Result is the computed pace prediction. It is never persisted directly;
// the venue and track scalars are carried forward for reuse by the scorer
// and the simulator.
type Result struct {
	PaceType           string
	Confidence         float64
	Reason             string
	AdvantageousStyles []models.RunningStyle
	EscapeCount        int
	FrontCount         int
	StalkerCount       int
	CloserCount        int

	VenueAdjustment          float64
	TrackConditionAdjustment float64
	VenueDescription         string
}

// TotalFrontAdvantage is the combined venue and going shift toward the front.
func (r *Result) TotalFrontAdvantage() float64 {
	return r.VenueAdjustment + r.TrackConditionAdjustment
}

// Predict classifies the race tempo from the field's running styles.
//
// The base bucket is driven by the escape count, then adjusted in order by
// escape-horse quality, distance, surface, and venue/going front advantage.
// The adjustment order matters: each step may touch confidence, the reason
// string, or the advantaged-style list left by the previous one.
func Predict(req Request) Result {
	var escapeCount, frontCount, stalkerCount, closerCount int
	for _, s := range req.RunningStyles {
		switch s {
		case models.StyleEscape:
			escapeCount++
		case models.StyleFront:
			frontCount++
		case models.StyleStalker:
			stalkerCount++
		case models.StyleCloser:
			closerCount++
		}
	}

	venueChar := VenueFor(req.Venue)
	trackAdjustment := TrackFrontModifier(req.TrackCondition)
	totalFrontAdvantage := venueChar.FrontAdvantage + trackAdjustment

	// Escape-horse quality: a popular leader settles the tempo, a weak
	// one tends to overrace.
	paceControlFactor := 1.0
	escapeQualityNote := ""
	if len(req.EscapePopularities) > 0 && escapeCount > 0 {
		sum := 0
		hasStrongEscape := false
		for _, p := range req.EscapePopularities {
			sum += p
			if p <= 3 {
				hasStrongEscape = true
			}
		}
		avgPopularity := float64(sum) / float64(len(req.EscapePopularities))

		if hasStrongEscape {
			paceControlFactor = 0.85
			escapeQualityNote = "人気馬の逃げでペースは落ち着く可能性"
		} else if avgPopularity >= 8 {
			paceControlFactor = 1.15
			escapeQualityNote = "人気薄の逃げ馬で暴走の可能性"
		}
	}

	var (
		paceType     string
		confidence   float64
		reason       string
		advantageous []models.RunningStyle
	)

	switch {
	case escapeCount >= 3:
		paceType = PaceHigh
		confidence = 0.85
		reason = fmt.Sprintf("逃げ馬が%d頭と多く、激しい先行争いが予想される", escapeCount)
		advantageous = []models.RunningStyle{models.StyleStalker, models.StyleCloser}
	case escapeCount >= 2:
		paceType = PaceHigh
		confidence = 0.7
		reason = fmt.Sprintf("逃げ馬%d頭による先行争いでハイペースが予想される", escapeCount)
		advantageous = []models.RunningStyle{models.StyleStalker, models.StyleCloser}
	case escapeCount == 0:
		paceType = PaceSlow
		confidence = 0.8
		reason = "逃げ馬不在でスローペース確実"
		advantageous = []models.RunningStyle{models.StyleFront, models.StyleStalker}
	case escapeCount == 1 && frontCount <= 2:
		paceType = PaceSlow
		confidence = 0.75
		reason = fmt.Sprintf("逃げ馬1頭、先行馬も%d頭と少なくスローペース濃厚", frontCount)
		advantageous = []models.RunningStyle{models.StyleEscape, models.StyleFront}
	case escapeCount == 1 && frontCount >= 5:
		paceType = PaceMiddle
		confidence = 0.6
		reason = fmt.Sprintf("逃げ馬は1頭だが先行馬%d頭で平均ペース", frontCount)
		advantageous = []models.RunningStyle{models.StyleFront, models.StyleStalker}
	default:
		paceType = PaceMiddle
		confidence = 0.5
		reason = "平均的なペースが予想される"
		advantageous = []models.RunningStyle{models.StyleFront, models.StyleStalker}
	}

	// Escape-horse quality adjustment.
	if paceControlFactor != 1.0 {
		if paceType == PaceHigh && paceControlFactor < 1.0 {
			confidence -= 0.1
			reason += fmt.Sprintf("（ただし%s）", escapeQualityNote)
		} else if paceType == PaceSlow && paceControlFactor > 1.0 {
			confidence -= 0.1
			reason += fmt.Sprintf("（%s）", escapeQualityNote)
		}
	}

	// Distance adjustments.
	if req.Distance >= 2400 {
		if paceType == PaceHigh {
			confidence -= 0.1
			reason += "（長距離戦で緩む可能性あり）"
		}
	} else if req.Distance <= 1400 {
		if paceType == PaceSlow {
			confidence -= 0.1
			reason += "（短距離戦でペース上がる可能性あり）"
		}
	}

	// Dirt races always keep at least one forward style advantaged.
	if req.CourseType == models.CourseDirt {
		if !containsStyle(advantageous, models.StyleEscape) && !containsStyle(advantageous, models.StyleFront) {
			advantageous = append([]models.RunningStyle{models.StyleFront}, advantageous...)
		}
	}

	// Venue and going front advantage.
	if totalFrontAdvantage >= 0.15 {
		if paceType == PaceSlow {
			if !containsStyle(advantageous, models.StyleEscape) {
				advantageous = append([]models.RunningStyle{models.StyleEscape}, advantageous...)
			}
			reason += fmt.Sprintf("（%sは前残り傾向）", req.Venue)
		}
		confidence += 0.05
	} else if totalFrontAdvantage <= -0.10 {
		if paceType == PaceHigh {
			if !containsStyle(advantageous, models.StyleCloser) {
				advantageous = append(advantageous, models.StyleCloser)
			}
			reason += fmt.Sprintf("（%sは長い直線で差し有利）", req.Venue)
		}
		confidence += 0.05
	}

	if trackAdjustment >= 0.10 {
		reason += fmt.Sprintf("（%s馬場で前残り警戒）", req.TrackCondition)
	}

	return Result{
		PaceType:                 paceType,
		Confidence:               clamp(confidence, minConfidence, maxConfidence),
		Reason:                   reason,
		AdvantageousStyles:       advantageous,
		EscapeCount:              escapeCount,
		FrontCount:               frontCount,
		StalkerCount:             stalkerCount,
		CloserCount:              closerCount,
		VenueAdjustment:          venueChar.FrontAdvantage,
		TrackConditionAdjustment: trackAdjustment,
		VenueDescription:         venueChar.Description,
	}
}

// AdvantageScore converts a running style and a pace prediction into a
// multiplicative advantage: 1.0 is neutral, above favours the style.
// Position in the advantaged list matters: 1.2, 1.15, 1.10, 1.05.
func AdvantageScore(style models.RunningStyle, result *Result) float64 {
	if style == "" {
		return 1.0
	}

	for i, s := range result.AdvantageousStyles {
		if s == style {
			return 1.2 - float64(i)*0.05
		}
	}

	switch result.PaceType {
	case PaceHigh:
		if style.IsForward() {
			return 0.85 // front runners struggle in a high pace
		}
	case PaceSlow:
		if style.IsBackmarker() {
			return 0.85 // back runners struggle in a slow pace
		}
	}
	return 1.0
}

func containsStyle(styles []models.RunningStyle, style models.RunningStyle) bool {
	for _, s := range styles {
		if s == style {
			return true
		}
	}
	return false
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
