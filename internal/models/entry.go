package models

import (
	"github.com/google/uuid"
)

// RunningStyle is a horse's early-race positioning tendency.
type RunningStyle string

const (
	StyleEscape    RunningStyle = "ESCAPE"
	StyleFront     RunningStyle = "FRONT"
	StyleStalker   RunningStyle = "STALKER"
	StyleCloser    RunningStyle = "CLOSER"
	StyleVersatile RunningStyle = "VERSATILE"
)

// ParseRunningStyle maps a raw style tag to a known RunningStyle.
// Upstream scraping data is frequently incomplete, so anything
// unrecognised degrades to VERSATILE rather than being rejected.
func ParseRunningStyle(raw string) RunningStyle {
	switch RunningStyle(raw) {
	case StyleEscape, StyleFront, StyleStalker, StyleCloser, StyleVersatile:
		return RunningStyle(raw)
	default:
		return StyleVersatile
	}
}

// IsForward reports whether the style races on or near the lead.
func (s RunningStyle) IsForward() bool {
	return s == StyleEscape || s == StyleFront
}

// IsBackmarker reports whether the style races from mid-pack or further back.
func (s RunningStyle) IsBackmarker() bool {
	return s == StyleStalker || s == StyleCloser
}

// EntryView is one starting horse as seen by the prediction engine.
//
// Odds and Popularity are carried as reference data only: scoring must not
// read them, or market prices silently become the prediction.
type EntryView struct {
	HorseID         uuid.UUID    `db:"horse_id" json:"horse_id" validate:"required"`
	HorseName       string       `db:"horse_name" json:"horse_name" validate:"required"`
	HorseNumber     int          `db:"horse_number" json:"horse_number" validate:"required,gte=1,lte=18"`
	PostPosition    int          `db:"post_position" json:"post_position" validate:"omitempty,gte=1,lte=8"`
	RunningStyle    RunningStyle `db:"running_style" json:"running_style"`
	Odds            float64      `db:"odds" json:"odds" validate:"omitempty,gte=1.0"`
	Popularity      int          `db:"popularity" json:"popularity" validate:"omitempty,gte=1"`
	JockeyName      string       `db:"jockey_name" json:"jockey_name"`
	HorseWeight     int          `db:"horse_weight" json:"horse_weight"`
	HorseWeightDiff int          `db:"horse_weight_diff" json:"horse_weight_diff"`
}

// EffectiveStyle returns the declared running style, defaulting to VERSATILE.
func (e *EntryView) EffectiveStyle() RunningStyle {
	if e.RunningStyle == "" {
		return StyleVersatile
	}
	return ParseRunningStyle(string(e.RunningStyle))
}

// HasMarketData reports whether odds and popularity were scraped for the entry.
func (e *EntryView) HasMarketData() bool {
	return e.Odds >= 1.0 && e.Popularity >= 1
}
