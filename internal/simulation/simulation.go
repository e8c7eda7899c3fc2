package simulation

import (
	"fmt"

	"github.com/yourusername/keiba-predictor/internal/models"
	"github.com/yourusername/keiba-predictor/internal/pace"
	"github.com/yourusername/keiba-predictor/internal/scoring"
)

// Build runs the full race simulation: checkpoint replay, start formation,
// pace and going what-ifs, and the animation timeline. It is a pure function
// of its inputs.
func Build(
	analyses []scoring.HorseAnalysis,
	race models.RaceContext,
	p *pace.Result,
) (*models.RaceSimulation, error) {
	if len(analyses) == 0 {
		return nil, models.ErrNoEntries
	}

	runners := newRunners(analyses)

	corners, ranksAt, err := runCheckpoints(runners, p)
	if err != nil {
		return nil, fmt.Errorf("simulating checkpoints: %w", err)
	}

	return &models.RaceSimulation{
		RaceID:             race.RaceID,
		RaceName:           race.Name,
		Distance:           race.Distance,
		CourseType:         race.CourseType,
		CornerPositions:    corners,
		StartFormation:     buildFormation(runners),
		Scenarios:          buildPaceScenarios(runners, p.PaceType),
		ConditionScenarios: buildConditionScenarios(runners, race.Venue),
		PredictedPace:      p.PaceType,
		AnimationFrames:    buildAnimation(runners, ranksAt),
	}, nil
}
