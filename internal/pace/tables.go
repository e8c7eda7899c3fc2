// Package pace classifies the expected tempo of a race from the running
// styles of its entries and the characteristics of the venue and going.
package pace

import (
	"github.com/yourusername/keiba-predictor/internal/models"
)

// CourseShape describes the overall geometry of a venue.
type CourseShape string

const (
	ShapeCompact CourseShape = "compact"
	ShapeMedium  CourseShape = "medium"
	ShapeLarge   CourseShape = "large"
)

// VenueCharacteristic captures how a venue treats early leaders.
// FrontAdvantage is signed: positive favours the front, negative the closers.
type VenueCharacteristic struct {
	FrontAdvantage float64
	Shape          CourseShape
	Straight       int // home straight length in meters
	HasUphill      bool
	Description    string
}

// venueCharacteristics holds the per-venue tuning table. Read-only after
// process start; safe for unsynchronized concurrent reads.
var venueCharacteristics = map[string]VenueCharacteristic{
	"中山": {FrontAdvantage: 0.15, Shape: ShapeCompact, Straight: 310, HasUphill: true, Description: "急坂小回り、前有利"},
	"東京": {FrontAdvantage: -0.10, Shape: ShapeLarge, Straight: 525, HasUphill: false, Description: "長い直線、差し有利"},
	"京都": {FrontAdvantage: -0.05, Shape: ShapeLarge, Straight: 404, HasUphill: false, Description: "平坦、末脚勝負"},
	"阪神": {FrontAdvantage: 0.00, Shape: ShapeMedium, Straight: 473, HasUphill: true, Description: "バランス型"},
	"中京": {FrontAdvantage: 0.05, Shape: ShapeMedium, Straight: 412, HasUphill: true, Description: "坂あり、やや前有利"},
	"小倉": {FrontAdvantage: 0.20, Shape: ShapeCompact, Straight: 293, HasUphill: false, Description: "平坦小回り、前残り多い"},
	"新潟": {FrontAdvantage: -0.15, Shape: ShapeLarge, Straight: 659, HasUphill: false, Description: "超長い直線、追込有利"},
	"福島": {FrontAdvantage: 0.15, Shape: ShapeCompact, Straight: 292, HasUphill: false, Description: "小回り、前有利"},
	"札幌": {FrontAdvantage: 0.15, Shape: ShapeCompact, Straight: 266, HasUphill: false, Description: "洋芝小回り、前有利"},
	"函館": {FrontAdvantage: 0.20, Shape: ShapeCompact, Straight: 262, HasUphill: false, Description: "洋芝最小回り、前残り"},
}

// trackConditionFrontModifier is the additive front-advantage shift per going.
// Deteriorating going favours the front.
var trackConditionFrontModifier = map[models.TrackCondition]float64{
	models.TrackGood:          0.00,
	models.TrackSlightlyHeavy: 0.05,
	models.TrackHeavy:         0.10,
	models.TrackBad:           0.15,
}

// VenueFor returns the characteristics of a venue. Unknown venues get a
// neutral medium-shaped course.
func VenueFor(venue string) VenueCharacteristic {
	if c, ok := venueCharacteristics[venue]; ok {
		return c
	}
	return VenueCharacteristic{FrontAdvantage: 0.0, Shape: ShapeMedium}
}

// TrackFrontModifier returns the front-advantage shift for a going.
// Unknown or empty conditions are treated as 良.
func TrackFrontModifier(condition models.TrackCondition) float64 {
	if m, ok := trackConditionFrontModifier[condition]; ok {
		return m
	}
	return 0.0
}
