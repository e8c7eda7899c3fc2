package pace

import (
	"github.com/yourusername/keiba-predictor/internal/models"
)

// Gate groups: 1-3 count as inner draws, 6-8 as outer draws.
const (
	innerGateMax = 3
	outerGateMin = 6
)

// PostPositionEffect combines a horse's draw, running style, and the venue
// shape into a multiplicative adjustment. 1.0 is neutral; a missing style or
// draw is neutral by definition.
func PostPositionEffect(postPosition int, style models.RunningStyle, venue string) float64 {
	if style == "" || postPosition == 0 {
		return 1.0
	}

	shape := VenueFor(venue).Shape
	isOuter := postPosition >= outerGateMin
	isInner := postPosition <= innerGateMax

	adjustment := 1.0

	switch style {
	case models.StyleEscape:
		if isOuter {
			// Outer-draw escape horses lose ground getting to the rail.
			adjustment *= 0.90
			if shape == ShapeCompact {
				adjustment *= 0.95
			}
		} else if isInner {
			adjustment *= 1.05
		}
	case models.StyleFront:
		if isOuter && shape == ShapeCompact {
			adjustment *= 0.95
		}
	case models.StyleStalker, models.StyleCloser:
		if shape == ShapeCompact {
			if isInner {
				adjustment *= 1.05
			} else if isOuter {
				adjustment *= 0.95
			}
		}
		// Large courses leave the draw neutral for these styles.
	}

	return adjustment
}
