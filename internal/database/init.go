package database

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-predictor/internal/config"
)

// Initialize creates a database connection pool and checks the migration state
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	// Verify migrations are applied by checking the schema_migrations table.
	// A missing table is fine on first boot; zero applied rows is worth a
	// warning because every query after this will fail.
	var migrationCount int
	err = db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&migrationCount)
	if err != nil {
		return db, nil
	}

	if migrationCount == 0 {
		logger.Warn("No migrations have been applied. Please run database migrations.")
	}

	return db, nil
}
