package models

import (
	"time"

	"github.com/google/uuid"
)

// PacePrediction summarises the predicted race tempo.
type PacePrediction struct {
	Type               string         `json:"type" validate:"oneof=slow middle high"`
	Confidence         float64        `json:"confidence" validate:"gte=0,lte=1"`
	Reason             string         `json:"reason"`
	AdvantageousStyles []RunningStyle `json:"advantageous_styles"`
	EscapeCount        int            `json:"escape_count"`
	FrontCount         int            `json:"front_count"`
}

// HorsePrediction is one row of the ranked prediction output.
type HorsePrediction struct {
	Rank             int       `json:"rank" validate:"gte=1"`
	HorseID          uuid.UUID `json:"horse_id"`
	HorseName        string    `json:"horse_name"`
	HorseNumber      int       `json:"horse_number"`
	Score            float64   `json:"score" validate:"gte=0,lte=1"`
	WinProbability   float64   `json:"win_probability" validate:"gte=0,lte=1"`
	PlaceProbability float64   `json:"place_probability" validate:"gte=0,lte=1"`
	Popularity       int       `json:"popularity,omitempty"`
	Odds             float64   `json:"odds,omitempty"`
	IsDarkHorse      bool      `json:"is_dark_horse"`
	DarkHorseReason  string    `json:"dark_horse_reason,omitempty"`
}

// PredictionResult is the complete output of a prediction run.
type PredictionResult struct {
	ID              uuid.UUID         `json:"id"`
	RaceID          uuid.UUID         `json:"race_id"`
	ModelVersion    string            `json:"model_version"`
	PredictedAt     time.Time         `json:"predicted_at"`
	Rankings        []HorsePrediction `json:"rankings"`
	Pace            *PacePrediction   `json:"pace_prediction,omitempty"`
	RecommendedBets *BetTicketSet     `json:"recommended_bets,omitempty"`
	ConfidenceScore float64           `json:"confidence_score"`
	Reasoning       string            `json:"reasoning"`
	UsedML          bool              `json:"used_ml"`
}

// TopN returns the first n rankings, or all of them when fewer exist.
func (p *PredictionResult) TopN(n int) []HorsePrediction {
	if len(p.Rankings) <= n {
		return p.Rankings
	}
	return p.Rankings[:n]
}

// DarkHorses returns every ranking flagged as a dark horse, in rank order.
func (p *PredictionResult) DarkHorses() []HorsePrediction {
	horses := make([]HorsePrediction, 0, 2)
	for _, r := range p.Rankings {
		if r.IsDarkHorse {
			horses = append(horses, r)
		}
	}
	return horses
}
