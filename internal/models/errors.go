package models

import "errors"

// Custom errors
var (
	// ErrNoEntries is returned when a prediction or simulation is requested
	// for a race with an empty entry list.
	ErrNoEntries = errors.New("race has no entries")

	// ErrDuplicateHorseNumber is returned when two entries share a starting number.
	ErrDuplicateHorseNumber = errors.New("duplicate horse number in entry list")

	// ErrInvariantViolated indicates a defect in the engine itself, e.g. a
	// checkpoint producing fewer ranked horses than entries. Never recoverable.
	ErrInvariantViolated = errors.New("simulation invariant violated")

	ErrNotFound     = errors.New("record not found")
	ErrInvalidID    = errors.New("invalid ID format")
	ErrDuplicateKey = errors.New("duplicate key violation")
)
