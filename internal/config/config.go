// Package config provides configuration management for the keiba predictor.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	MLService  MLServiceConfig  `mapstructure:"ml_service" validate:"required"`
	DataSource DataSourceConfig `mapstructure:"data_source" validate:"required"`
	Prediction PredictionConfig `mapstructure:"prediction" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Health     HealthConfig     `mapstructure:"health"`
	Features   FeaturesConfig   `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// MLServiceConfig represents the optional place-probability model service
type MLServiceConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	URL             string `mapstructure:"url" validate:"required,url"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts   int    `mapstructure:"retry_attempts" validate:"gte=0"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// DataSourceConfig represents the upstream race-card source
type DataSourceConfig struct {
	Name              string  `mapstructure:"name" validate:"required,oneof=netkeiba file"`
	BaseURL           string  `mapstructure:"base_url" validate:"required,url"`
	SnapshotDir       string  `mapstructure:"snapshot_dir"`
	APIKey            string  `mapstructure:"api_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	Burst             int     `mapstructure:"burst" validate:"required,gt=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int     `mapstructure:"retry_attempts" validate:"gte=0"`
	UserAgent         string  `mapstructure:"user_agent"`
	FailureThreshold  int     `mapstructure:"failure_threshold" validate:"gte=0"`
	CooldownSeconds   int     `mapstructure:"cooldown_seconds" validate:"gte=0"`
}

// PredictionConfig represents prediction engine settings
type PredictionConfig struct {
	ModelVersion string `mapstructure:"model_version" validate:"required"`
}

// SchedulerConfig represents the background prediction refresh
type SchedulerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	RefreshCron string `mapstructure:"refresh_cron" validate:"omitempty,cron"`
	Timezone    string `mapstructure:"timezone"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health probe endpoint
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	MLPredictionsEnabled  bool `mapstructure:"ml_predictions_enabled"`
	AnimationEnabled      bool `mapstructure:"animation_enabled"`
	PersistencesEnabled   bool `mapstructure:"persistence_enabled"`
	WebsocketStreamEnabled bool `mapstructure:"websocket_stream_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ServerAddr returns the listen address for the HTTP API
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MLTimeout returns the ML request timeout as a duration
func (c *Config) MLTimeout() time.Duration {
	return time.Duration(c.MLService.TimeoutSeconds) * time.Second
}

// MLCacheTTL returns the ML score cache lifetime as a duration
func (c *Config) MLCacheTTL() time.Duration {
	return time.Duration(c.MLService.CacheTTLSeconds) * time.Second
}

// DataSourceTimeout returns the race-card fetch timeout as a duration
func (c *Config) DataSourceTimeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}
