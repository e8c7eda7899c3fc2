package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// FileSource reads race-card snapshots from a local directory, one JSON file
// per race card in the RaceCard format. It backs offline prediction runs and
// replays of past race days.
type FileSource struct {
	dir     string
	enabled bool
	logger  *logrus.Logger
}

// NewFileSource creates a race-card source over a snapshot directory.
func NewFileSource(dir string, enabled bool, logger *logrus.Logger) *FileSource {
	return &FileSource{
		dir:     dir,
		enabled: enabled,
		logger:  logger,
	}
}

// FetchRaceCards loads every snapshot whose race date matches the given day.
func (s *FileSource) FetchRaceCards(ctx context.Context, date time.Time) ([]RaceCard, error) {
	if !s.enabled {
		return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "data source disabled", ErrSourceDisabled)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeNotFound, fmt.Sprintf("snapshot directory %s", s.dir), err)
	}

	day := date.Format("2006-01-02")
	var cards []RaceCard
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := s.load(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.WithField("file", entry.Name()).WithError(err).Warn("Skipping unreadable snapshot")
			continue
		}
		if card.Race.Date.Format("2006-01-02") == day {
			cards = append(cards, *card)
		}
	}

	return cards, nil
}

// FetchRaceCard loads the snapshot named <sourceID>.json.
func (s *FileSource) FetchRaceCard(ctx context.Context, sourceID string) (*RaceCard, error) {
	if !s.enabled {
		return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "data source disabled", ErrSourceDisabled)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, filepath.Base(sourceID)+".json")
	card, err := s.load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewSourceError(s.Name(), ErrCodeNotFound, sourceID, ErrNotFound)
		}
		return nil, err
	}
	return card, nil
}

// Name returns the data source name
func (s *FileSource) Name() string {
	return "file"
}

// IsEnabled returns whether this data source is enabled
func (s *FileSource) IsEnabled() bool {
	return s.enabled
}

func (s *FileSource) load(path string) (*RaceCard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var card RaceCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeInvalidData, filepath.Base(path), err)
	}
	if card.SourceID == "" {
		card.SourceID = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return &card, nil
}

// LoadRaceCardFile reads a single race-card JSON file from an arbitrary path.
// Used by the CLI for one-off predictions outside a snapshot directory.
func LoadRaceCardFile(path string) (*RaceCard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read race card %s: %w", path, err)
	}

	var card RaceCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("failed to parse race card %s: %w", path, err)
	}
	return &card, nil
}
