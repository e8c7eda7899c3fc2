package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseType represents the racing surface.
type CourseType string

const (
	CourseTurf CourseType = "芝"
	CourseDirt CourseType = "ダート"
)

// TrackCondition represents the official going of the track.
type TrackCondition string

const (
	TrackGood          TrackCondition = "良"
	TrackSlightlyHeavy TrackCondition = "稍重"
	TrackHeavy         TrackCondition = "重"
	TrackBad           TrackCondition = "不良"
)

// TrackConditions lists every official going in severity order.
var TrackConditions = []TrackCondition{TrackGood, TrackSlightlyHeavy, TrackHeavy, TrackBad}

// RaceContext is the immutable per-request description of a race.
// It is supplied once per prediction/simulation call and never mutated.
type RaceContext struct {
	RaceID         uuid.UUID      `db:"race_id" json:"race_id" validate:"required"`
	Name           string         `db:"name" json:"name"`
	Date           time.Time      `db:"date" json:"date"`
	Venue          string         `db:"venue" json:"venue" validate:"required"`
	CourseType     CourseType     `db:"course_type" json:"course_type" validate:"required"`
	Distance       int            `db:"distance" json:"distance" validate:"required,gte=800,lte=4000"`
	TrackCondition TrackCondition `db:"track_condition" json:"track_condition"`
	Grade          string         `db:"grade" json:"grade"`
}

// IsTurf reports whether the race is run on turf.
func (r *RaceContext) IsTurf() bool {
	return r.CourseType == CourseTurf
}

// EffectiveTrackCondition returns the track condition, defaulting to 良.
func (r *RaceContext) EffectiveTrackCondition() TrackCondition {
	if r.TrackCondition == "" {
		return TrackGood
	}
	return r.TrackCondition
}

// IsSprintDistance reports whether the race is 1400m or shorter.
func (r *RaceContext) IsSprintDistance() bool {
	return r.Distance <= 1400
}

// IsStayerDistance reports whether the race is 2400m or longer.
func (r *RaceContext) IsStayerDistance() bool {
	return r.Distance >= 2400
}
