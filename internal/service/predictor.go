package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"brai/internal/models"
	"brai/internal/regressor"
	"brai/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	outcomeCreated = "created"
	outcomeReused  = "reused"
	outcomeFailed  = "failed"

	baselineConfidence = 0.9
	baselineGrade      = 3

	// MaxPageLimit bounds the page size of prediction listings.
	MaxPageLimit = 100
)

// Predictor computes, memoizes and looks up breeding predictions.
type Predictor struct {
	datasets repository.DatasetRepository
	strains  repository.StrainRepository
	models   repository.ModelRepository
	store    repository.PredictionRepository
	metrics  *Metrics
	logger   *zap.Logger

	// mu serializes the lookup-compute-save sequence so that identical
	// requests never produce two predictions.
	mu    sync.Mutex
	now   func() time.Time
	newID func() (string, error)
}

// NewPredictor creates a new prediction engine
func NewPredictor(
	datasets repository.DatasetRepository,
	strains repository.StrainRepository,
	modelRepo repository.ModelRepository,
	store repository.PredictionRepository,
	metrics *Metrics,
	logger *zap.Logger,
) *Predictor {
	return &Predictor{
		datasets: datasets,
		strains:  strains,
		models:   modelRepo,
		store:    store,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		newID:    newPredictionID,
	}
}

func newPredictionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// CreatePrediction returns the stored prediction for req, computing and
// saving it first when none exists. created reports whether a new
// prediction was stored.
func (p *Predictor) CreatePrediction(ctx context.Context, req models.PredictionRequest) (pred *models.Prediction, created bool, err error) {
	ds, err := p.datasets.GetDataset(ctx, req.DatasetID)
	if err != nil {
		return nil, false, err
	}
	model, err := p.models.GetModel(ctx, req.ModelID)
	if err != nil {
		return nil, false, err
	}
	male, err := p.resolveStrain(ctx, ds, req.MaleStrainID, "maleStrainId")
	if err != nil {
		return nil, false, err
	}
	female, err := p.resolveStrain(ctx, ds, req.FemaleStrainID, "femaleStrainId")
	if err != nil {
		return nil, false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	existing, err := p.store.FindByRequest(ctx, req)
	switch {
	case err == nil:
		p.metrics.observe(existing.Mode, outcomeReused, 0)
		return existing, false, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, false, fmt.Errorf("failed to look up prediction: %w", err)
	}

	start := time.Now()
	mode := models.ModeBaseline
	defer func() {
		if err != nil {
			p.metrics.observe(mode, outcomeFailed, 0)
		}
	}()

	set, err := p.models.Regressors(ctx, model.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load model %s: %w", model.ID, err)
	}

	var phenotype map[string]models.PhenotypePrediction
	if set != nil {
		mode = models.ModeAdvanced
		phenotype, err = advanced(ctx, ds, model, set, male, female)
		if err != nil {
			return nil, false, err
		}
	} else {
		phenotype = baseline(ds, male, female)
	}

	id, err := p.newID()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate prediction id: %w", err)
	}

	pred = &models.Prediction{
		ID:                 id,
		DatasetID:          ds.ID,
		ModelID:            model.ID,
		MaleStrainID:       male.ID,
		FemaleStrainID:     female.ID,
		MaleStrain:         male,
		FemaleStrain:       female,
		PredictedPhenotype: phenotype,
		OverallScore:       overallScore(phenotype),
		Mode:               mode,
		CreatedAt:          p.now().UTC().Truncate(time.Millisecond),
	}
	if err := p.store.Save(ctx, pred); err != nil {
		return nil, false, fmt.Errorf("failed to save prediction: %w", err)
	}

	p.metrics.observe(mode, outcomeCreated, time.Since(start).Seconds())
	p.logger.Info("Prediction created",
		zap.String("id", pred.ID),
		zap.String("dataset_id", pred.DatasetID),
		zap.String("model_id", pred.ModelID),
		zap.String("combination", pred.CombinationKey()),
		zap.String("mode", mode),
		zap.Int("traits", len(phenotype)))

	return pred, true, nil
}

// resolveStrain loads a strain and checks its dataset membership. Strains
// unknown everywhere are reported as not found; known strains outside ds are
// a validation error.
func (p *Predictor) resolveStrain(ctx context.Context, ds *models.Dataset, id, field string) (*models.Strain, error) {
	if !ds.HasStrain(id) {
		if _, err := p.strains.GetStrain(ctx, id, ""); err != nil {
			return nil, err
		}
		return nil, models.Invalid(field, "strain %s is not part of dataset %s", id, ds.ID)
	}
	return p.strains.GetStrain(ctx, id, ds.ID)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func baseline(ds *models.Dataset, male, female *models.Strain) map[string]models.PhenotypePrediction {
	out := make(map[string]models.PhenotypePrediction)
	for _, trait := range ds.Phenotype {
		mv, mok := male.Phenotype[trait]
		fv, fok := female.Phenotype[trait]

		if mok && fok && mv.IsNumeric() && fv.IsNumeric() {
			a, _ := mv.Float()
			b, _ := fv.Float()
			grade := baselineGrade
			out[trait] = models.PhenotypePrediction{
				Value:      models.NumberValue(round2((a + b) / 2)),
				Confidence: baselineConfidence,
				Grade:      &grade,
			}
			continue
		}

		switch {
		case fok && !fv.IsNumeric():
			out[trait] = models.PhenotypePrediction{Value: fv, Confidence: baselineConfidence}
		case mok && !mv.IsNumeric():
			out[trait] = models.PhenotypePrediction{Value: mv, Confidence: baselineConfidence}
		}
	}
	return out
}

func advanced(ctx context.Context, ds *models.Dataset, model *models.Model, set *regressor.Set, male, female *models.Strain) (map[string]models.PhenotypePrediction, error) {
	features, err := set.PCs.Features(male.ID, female.ID, set.NPcs)
	if err != nil {
		return nil, err
	}

	datasetTraits := make(map[string]bool, len(ds.Phenotype))
	for _, trait := range ds.Phenotype {
		datasetTraits[trait] = true
	}

	out := make(map[string]models.PhenotypePrediction)
	for _, trait := range model.Traits {
		reg, ok := set.ByTrait[trait]
		if !ok || !datasetTraits[trait] {
			continue
		}
		v, err := reg.Predict(ctx, features)
		if err != nil {
			return nil, fmt.Errorf("model %s trait %s: %w", model.ID, trait, err)
		}
		out[trait] = models.PhenotypePrediction{
			Value:      models.NumberValue(round2(v)),
			Confidence: set.ConfidenceFor(trait),
		}
	}
	return out, nil
}

func overallScore(phenotype map[string]models.PhenotypePrediction) float64 {
	if len(phenotype) == 0 {
		return 0
	}
	var sum float64
	for _, p := range phenotype {
		sum += p.Confidence
	}
	return round2(sum / float64(len(phenotype)))
}

// GetPrediction returns the prediction stored under id.
func (p *Predictor) GetPrediction(ctx context.Context, id string) (*models.Prediction, error) {
	return p.store.GetByID(ctx, id)
}

// GetPredictionByCombination returns the latest prediction for the ordered
// pair (maleID, femaleID).
func (p *Predictor) GetPredictionByCombination(ctx context.Context, maleID, femaleID string) (*models.Prediction, error) {
	return p.store.GetByCombination(ctx, maleID, femaleID)
}

// ListCombinations returns the combination index sorted by key.
func (p *Predictor) ListCombinations(ctx context.Context, filter models.CombinationFilter) ([]models.Combination, error) {
	return p.store.ListCombinations(ctx, filter)
}

// ListPredictions returns one page of stored predictions.
func (p *Predictor) ListPredictions(ctx context.Context, q models.PageQuery) (*models.PredictionPage, error) {
	if q.Page < 1 {
		return nil, models.Invalid("page", "must be at least 1")
	}
	if q.Limit < 1 || q.Limit > MaxPageLimit {
		return nil, models.Invalid("limit", "must be between 1 and %d", MaxPageLimit)
	}
	// Page*Limit must fit in an int so offsets never wrap.
	if q.Page > math.MaxInt/q.Limit {
		return nil, models.Invalid("page", "must be at most %d for limit %d", math.MaxInt/q.Limit, q.Limit)
	}
	sort, ok := models.NormalizeSort(q.Sort)
	if !ok {
		return nil, models.Invalid("sort", "must be asc or desc")
	}
	q.Sort = sort

	items, total, err := p.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &models.PredictionPage{
		Items:   items,
		Total:   total,
		Page:    q.Page,
		Limit:   q.Limit,
		HasMore: q.Offset()+len(items) < total,
	}, nil
}
