package models

import (
	"github.com/google/uuid"
)

// HorsePosition is one horse's relative placing at a checkpoint.
type HorsePosition struct {
	HorseNumber        int          `json:"horse_number"`
	HorseName          string       `json:"horse_name"`
	RunningStyle       RunningStyle `json:"running_style"`
	Position           int          `json:"position" validate:"gte=1"`
	DistanceFromLeader float64      `json:"distance_from_leader" validate:"gte=0"`
}

// CornerPositions lists every horse's placing at one checkpoint.
type CornerPositions struct {
	CornerName string          `json:"corner_name"`
	Horses     []HorsePosition `json:"horses"`
}

// FormationHorse is a horse in the start formation diagram.
type FormationHorse struct {
	HorseNumber  int          `json:"horse_number"`
	HorseName    string       `json:"horse_name"`
	RunningStyle RunningStyle `json:"running_style"`
}

// FormationRow is one row of the start formation, front row first.
type FormationRow struct {
	RowIndex int              `json:"row_index"`
	RowLabel string           `json:"row_label"`
	Horses   []FormationHorse `json:"horses"`
}

// StartFormation groups the field by running style as it leaves the gate.
type StartFormation struct {
	Rows        []FormationRow `json:"rows"`
	TotalHorses int            `json:"total_horses"`
}

// ScenarioRanking is one of the top placings under an alternate scenario.
type ScenarioRanking struct {
	Rank        int     `json:"rank"`
	HorseNumber int     `json:"horse_number"`
	HorseName   string  `json:"horse_name"`
	Score       float64 `json:"score" validate:"gte=0,lte=1"`
}

// ScenarioKeyHorse is a longshot that benefits from a scenario.
type ScenarioKeyHorse struct {
	HorseNumber int    `json:"horse_number"`
	HorseName   string `json:"horse_name"`
	Reason      string `json:"reason"`
}

// PaceScenario is an alternate race outcome under a forced pace assumption.
type PaceScenario struct {
	PaceType           string             `json:"pace_type"`
	PaceLabel          string             `json:"pace_label"`
	Probability        float64            `json:"probability" validate:"gte=0,lte=1"`
	Rankings           []ScenarioRanking  `json:"rankings"`
	KeyHorses          []ScenarioKeyHorse `json:"key_horses"`
	AdvantageousStyles []RunningStyle     `json:"advantageous_styles"`
	Description        string             `json:"description"`
}

// TrackConditionScenario is an alternate race outcome under a forced going.
// Unlike pace scenarios these are an exhaustive enumeration, not
// probability-weighted.
type TrackConditionScenario struct {
	Condition          TrackCondition     `json:"condition"`
	FrontAdvantage     float64            `json:"front_advantage"`
	Rankings           []ScenarioRanking  `json:"rankings"`
	KeyHorses          []ScenarioKeyHorse `json:"key_horses"`
	AdvantageousStyles []RunningStyle     `json:"advantageous_styles"`
	Description        string             `json:"description"`
}

// AnimationHorse is one horse's display state in an animation frame.
type AnimationHorse struct {
	HorseNumber  int          `json:"horse_number"`
	HorseName    string       `json:"horse_name"`
	RunningStyle RunningStyle `json:"running_style"`
	Progress     float64      `json:"progress" validate:"gte=0,lte=1"`
	Lane         int          `json:"lane" validate:"gte=1,lte=8"`
}

// AnimationFrame is one sample of the interpolated race timeline.
type AnimationFrame struct {
	Time   float64          `json:"time" validate:"gte=0,lte=1"`
	Horses []AnimationHorse `json:"horses"`
}

// RaceSimulation is the complete visual simulation payload for a race.
type RaceSimulation struct {
	RaceID             uuid.UUID                `json:"race_id"`
	RaceName           string                   `json:"race_name"`
	Distance           int                      `json:"distance"`
	CourseType         CourseType               `json:"course_type"`
	CornerPositions    []CornerPositions        `json:"corner_positions"`
	StartFormation     StartFormation           `json:"start_formation"`
	Scenarios          []PaceScenario           `json:"scenarios"`
	ConditionScenarios []TrackConditionScenario `json:"condition_scenarios"`
	PredictedPace      string                   `json:"predicted_pace"`
	AnimationFrames    []AnimationFrame         `json:"animation_frames,omitempty"`
}
