package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		dataset_id TEXT NOT NULL,
		model_id TEXT NOT NULL,
		male_strain_id TEXT NOT NULL,
		female_strain_id TEXT NOT NULL,
		combination_key TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_predictions_request
		ON predictions(dataset_id, model_id, male_strain_id, female_strain_id);
	CREATE INDEX IF NOT EXISTS idx_predictions_combination ON predictions(female_strain_id, male_strain_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
	`

// NewSQLiteDB opens the SQLite file at dbPath and creates the schema.
func NewSQLiteDB(dbPath string, logger *zap.Logger) (*sqlx.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("SQLite prediction store initialized", zap.String("db_path", dbPath))
	return db, nil
}
