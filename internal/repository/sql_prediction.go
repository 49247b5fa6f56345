package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"brai/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// sqlPredictionRepository stores predictions in a single table shared by the
// SQLite and PostgreSQL drivers. Queries use '?' placeholders and are rebound
// for the connected driver.
type sqlPredictionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSQLPredictionRepository wraps an open, migrated database.
func NewSQLPredictionRepository(db *sqlx.DB, logger *zap.Logger) PredictionRepository {
	return &sqlPredictionRepository{db: db, logger: logger}
}

type combinationRow struct {
	ID             string `db:"id"`
	MaleStrainID   string `db:"male_strain_id"`
	FemaleStrainID string `db:"female_strain_id"`
	CreatedAt      int64  `db:"created_at"`
}

func (r *sqlPredictionRepository) Save(ctx context.Context, p *models.Prediction) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode prediction: %w", err)
	}
	query := r.db.Rebind(`INSERT INTO predictions (
			id, dataset_id, model_id, male_strain_id, female_strain_id,
			combination_key, created_at, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.DatasetID,
		p.ModelID,
		p.MaleStrainID,
		p.FemaleStrainID,
		p.CombinationKey(),
		p.CreatedAt.UnixMilli(),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

func (r *sqlPredictionRepository) getOne(ctx context.Context, kind, id, query string, args ...any) (*models.Prediction, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload, r.db.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFound(kind, id)
		}
		return nil, fmt.Errorf("failed to load prediction: %w", err)
	}
	return decodePrediction(payload)
}

func (r *sqlPredictionRepository) GetByID(ctx context.Context, id string) (*models.Prediction, error) {
	return r.getOne(ctx, "prediction", id, `SELECT payload FROM predictions WHERE id = ?`, id)
}

func (r *sqlPredictionRepository) FindByRequest(ctx context.Context, req models.PredictionRequest) (*models.Prediction, error) {
	query := `SELECT payload FROM predictions
		WHERE dataset_id = ? AND model_id = ? AND male_strain_id = ? AND female_strain_id = ?`
	return r.getOne(ctx, "prediction", models.CombinationKey(req.MaleStrainID, req.FemaleStrainID), query,
		req.DatasetID, req.ModelID, req.MaleStrainID, req.FemaleStrainID)
}

func (r *sqlPredictionRepository) GetByCombination(ctx context.Context, maleID, femaleID string) (*models.Prediction, error) {
	query := `SELECT payload FROM predictions
		WHERE female_strain_id = ? AND male_strain_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return r.getOne(ctx, "prediction", models.CombinationKey(maleID, femaleID), query, femaleID, maleID)
}

func (r *sqlPredictionRepository) List(ctx context.Context, q models.PageQuery) ([]*models.Prediction, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM predictions`); err != nil {
		return nil, 0, fmt.Errorf("failed to count predictions: %w", err)
	}

	order := "DESC"
	if q.Ascending() {
		order = "ASC"
	}
	query := r.db.Rebind(fmt.Sprintf(`SELECT payload FROM predictions
		ORDER BY created_at %[1]s, id %[1]s
		LIMIT ? OFFSET ?`, order))

	var payloads []string
	if err := r.db.SelectContext(ctx, &payloads, query, q.Limit, q.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list predictions: %w", err)
	}

	items := make([]*models.Prediction, 0, len(payloads))
	for _, payload := range payloads {
		p, err := decodePrediction(payload)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *sqlPredictionRepository) ListCombinations(ctx context.Context, filter models.CombinationFilter) ([]models.Combination, error) {
	var (
		where []string
		args  []any
	)
	if filter.DatasetID != "" {
		where = append(where, "dataset_id = ?")
		args = append(args, filter.DatasetID)
	}
	if filter.ModelID != "" {
		where = append(where, "model_id = ?")
		args = append(args, filter.ModelID)
	}

	query := `SELECT id, male_strain_id, female_strain_id, created_at FROM predictions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	var rows []combinationRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list combinations: %w", err)
	}

	// Rows are ordered oldest first, so the last one per pair wins.
	latest := make(map[parentPair]*models.Prediction, len(rows))
	for _, row := range rows {
		latest[parentPair{male: row.MaleStrainID, female: row.FemaleStrainID}] = &models.Prediction{
			ID:             row.ID,
			MaleStrainID:   row.MaleStrainID,
			FemaleStrainID: row.FemaleStrainID,
			CreatedAt:      time.UnixMilli(row.CreatedAt).UTC(),
		}
	}
	return combinationsOf(latest), nil
}

func (r *sqlPredictionRepository) Close() error {
	return r.db.Close()
}

func decodePrediction(payload string) (*models.Prediction, error) {
	var p models.Prediction
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("failed to decode stored prediction: %w", err)
	}
	return &p, nil
}
