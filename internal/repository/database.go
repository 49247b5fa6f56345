package repository

import (
	"fmt"

	"brai/internal/config"

	"go.uber.org/zap"
)

// NewPredictionRepository opens the prediction store selected by driver.
func NewPredictionRepository(driver, dsn string, logger *zap.Logger) (PredictionRepository, error) {
	switch driver {
	case "", config.StoreMemory:
		logger.Info("Using in-memory prediction store")
		return NewMemoryPredictionRepository(), nil
	case config.StoreSQLite:
		db, err := NewSQLiteDB(dsn, logger)
		if err != nil {
			return nil, err
		}
		return NewSQLPredictionRepository(db, logger), nil
	case config.StorePostgres:
		db, err := NewPostgresDB(dsn, logger)
		if err != nil {
			return nil, err
		}
		if err := MigratePostgres(db, logger); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLPredictionRepository(db, logger), nil
	default:
		return nil, fmt.Errorf("unknown prediction store driver %q", driver)
	}
}
