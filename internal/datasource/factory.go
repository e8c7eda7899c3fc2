package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-predictor/internal/config"
)

// SourceType represents the type of race-card source
type SourceType string

const (
	// Netkeiba-style JSON API source
	NetkeibaSourceType SourceType = "netkeiba"
	// Local snapshot directory source
	FileSourceType SourceType = "file"
)

// Factory creates RaceCardSource implementations based on configuration
type Factory struct {
	cfg    config.DataSourceConfig
	logger *logrus.Logger
}

// NewFactory creates a new race-card source factory
func NewFactory(cfg config.DataSourceConfig, logger *logrus.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// New creates the configured race-card source. HTTP-backed sources share the
// given rate-limited client; file sources ignore it.
func (f *Factory) New(httpClient *RateLimitedHTTPClient) (RaceCardSource, error) {
	switch SourceType(f.cfg.Name) {
	case NetkeibaSourceType:
		if httpClient == nil {
			return nil, fmt.Errorf("HTTP client is required for source %s", f.cfg.Name)
		}
		return NewNetkeibaClient(httpClient, f.cfg.BaseURL, f.cfg.APIKey, true, f.logger), nil

	case FileSourceType:
		if f.cfg.SnapshotDir == "" {
			return nil, fmt.Errorf("snapshot_dir is required for source %s", f.cfg.Name)
		}
		return NewFileSource(f.cfg.SnapshotDir, true, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown data source: %s", f.cfg.Name)
	}
}
