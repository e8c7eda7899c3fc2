// Package datasource fetches race cards from upstream providers and
// normalizes them into the engine's entry model.
package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/keiba-predictor/internal/models"
)

// RaceCardSource defines the interface for fetching race cards from a provider.
type RaceCardSource interface {
	// FetchRaceCards retrieves every race card scheduled on the given date.
	FetchRaceCards(ctx context.Context, date time.Time) ([]RaceCard, error)

	// FetchRaceCard retrieves a single race card by the provider's race ID.
	FetchRaceCard(ctx context.Context, sourceID string) (*RaceCard, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// RaceCard is a normalized race card from any provider: the race context
// plus every declared starter, ready to hand to the prediction engine.
type RaceCard struct {
	SourceID  string             `json:"source_id"`
	Race      models.RaceContext `json:"race"`
	Entries   []models.EntryView `json:"entries"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// SourceError represents errors from race-card source operations.
type SourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors for callers that branch on failure class.
var (
	ErrSourceDisabled = errors.New("data source disabled")
	ErrCircuitOpen    = errors.New("circuit breaker open")
	ErrNotFound       = errors.New("race card not found")
)

// NewSourceError creates a new race-card source error.
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
