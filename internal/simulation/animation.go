package simulation

import (
	"math"

	"github.com/yourusername/keiba-predictor/internal/models"
	"github.com/yourusername/keiba-predictor/internal/scoring"
)

const (
	frameCount = 61
	laneMax    = 8

	// Drift spreads displayed finishing times by up to ±6% of total
	// progress, proportional to final rank and growing over the race.
	driftSpread = 0.12
	driftShift  = 0.06
)

// checkpointProgress maps the polyline points onto course progress. The first
// point is a synthetic start seeded from the style baseline.
var checkpointProgress = []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0}

func laneFor(rank float64) int {
	lane := int(rank-1)/2 + 1
	if lane < 1 {
		return 1
	}
	if lane > laneMax {
		return laneMax
	}
	return lane
}

// buildAnimation interpolates the checkpoint ranks into 61 evenly spaced
// frames. Drift touches the displayed progress only; rank and lane always
// come straight from the checkpoint polyline.
func buildAnimation(runners []runner, ranksAt [][]int) []models.AnimationFrame {
	n := len(runners)

	rankPoints := make([][]float64, n)
	lanePoints := make([][]float64, n)
	for i := range runners {
		points := make([]float64, len(checkpointProgress))
		points[0] = scoring.FirstCornerPosition(runners[i].style)
		for cp := range ranksAt {
			points[cp+1] = float64(ranksAt[cp][i])
		}
		rankPoints[i] = points

		lanes := make([]float64, len(points))
		for j, rank := range points {
			lanes[j] = float64(laneFor(rank))
		}
		lanePoints[i] = lanes
	}

	goalRanks := ranksAt[goalCheckpoint]

	frames := make([]models.AnimationFrame, 0, frameCount)
	for f := 0; f < frameCount; f++ {
		t := float64(f) / float64(frameCount-1)

		frame := models.AnimationFrame{
			Time:   t,
			Horses: make([]models.AnimationHorse, 0, n),
		}
		for i := range runners {
			lane := int(math.Round(interpolate(lanePoints[i], t)))
			if lane < 1 {
				lane = 1
			} else if lane > laneMax {
				lane = laneMax
			}

			frame.Horses = append(frame.Horses, models.AnimationHorse{
				HorseNumber:  runners[i].number,
				HorseName:    runners[i].name,
				RunningStyle: runners[i].style,
				Progress:     driftedProgress(t, goalRanks[i], n),
				Lane:         lane,
			})
		}
		frames = append(frames, frame)
	}
	return frames
}

// interpolate samples a checkpoint polyline at global progress t, clamping at
// both ends.
func interpolate(points []float64, t float64) float64 {
	if t <= checkpointProgress[0] {
		return points[0]
	}
	last := len(checkpointProgress) - 1
	if t >= checkpointProgress[last] {
		return points[last]
	}

	seg := 0
	for t > checkpointProgress[seg+1] {
		seg++
	}
	span := checkpointProgress[seg+1] - checkpointProgress[seg]
	u := (t - checkpointProgress[seg]) / span
	return points[seg] + (points[seg+1]-points[seg])*u
}

// driftedProgress offsets the displayed progress so that leaders finish
// slightly early and tailenders slightly late.
func driftedProgress(t float64, goalRank, fieldSize int) float64 {
	rankFraction := 0.0
	if fieldSize > 1 {
		rankFraction = float64(goalRank-1) / float64(fieldSize-1)
	}
	offset := (driftSpread*(1.0-rankFraction) - driftShift) * t
	return clampUnit(t + offset)
}
