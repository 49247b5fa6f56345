package repository

import (
	"context"
	"sort"
	"sync"

	"brai/internal/models"
)

// PredictionRepository stores computed predictions. The id index and the
// combination index are maintained separately: GetByCombination returns the
// most recently created prediction for an ordered parent pair. Pairs are
// compared by their ids, never by the joined combination key, since ids may
// themselves contain '-'.
type PredictionRepository interface {
	Save(ctx context.Context, p *models.Prediction) error
	GetByID(ctx context.Context, id string) (*models.Prediction, error)
	// FindByRequest returns the prediction computed for exactly req, or
	// ErrNotFound.
	FindByRequest(ctx context.Context, req models.PredictionRequest) (*models.Prediction, error)
	GetByCombination(ctx context.Context, maleID, femaleID string) (*models.Prediction, error)
	List(ctx context.Context, q models.PageQuery) ([]*models.Prediction, int, error)
	ListCombinations(ctx context.Context, filter models.CombinationFilter) ([]models.Combination, error)
	Close() error
}

type memoryPredictionRepository struct {
	mu           sync.RWMutex
	byID         map[string]*models.Prediction
	byRequest    map[requestKey]string
	combinations map[parentPair]string
}

// parentPair identifies an ordered male x female cross.
type parentPair struct {
	male, female string
}

func pairOf(p *models.Prediction) parentPair {
	return parentPair{male: p.MaleStrainID, female: p.FemaleStrainID}
}

// NewMemoryPredictionRepository keeps predictions for the lifetime of the process.
func NewMemoryPredictionRepository() PredictionRepository {
	return &memoryPredictionRepository{
		byID:         make(map[string]*models.Prediction),
		byRequest:    make(map[requestKey]string),
		combinations: make(map[parentPair]string),
	}
}

// requestKey identifies the inputs a prediction was computed from.
type requestKey struct {
	dataset, model, male, female string
}

// newer reports whether a sorts after b in creation order.
func newer(a, b *models.Prediction) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (r *memoryPredictionRepository) Save(_ context.Context, p *models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID]; ok {
		return models.Invalid("id", "prediction %s already exists", p.ID)
	}
	r.byID[p.ID] = p
	r.byRequest[requestKey{p.DatasetID, p.ModelID, p.MaleStrainID, p.FemaleStrainID}] = p.ID

	pair := pairOf(p)
	if current, ok := r.byID[r.combinations[pair]]; !ok || newer(p, current) {
		r.combinations[pair] = p.ID
	}
	return nil
}

func (r *memoryPredictionRepository) GetByID(_ context.Context, id string) (*models.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, models.NotFound("prediction", id)
	}
	return p, nil
}

func (r *memoryPredictionRepository) FindByRequest(_ context.Context, req models.PredictionRequest) (*models.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byRequest[requestKey{req.DatasetID, req.ModelID, req.MaleStrainID, req.FemaleStrainID}]
	if !ok {
		return nil, models.NotFound("prediction", models.CombinationKey(req.MaleStrainID, req.FemaleStrainID))
	}
	return r.byID[id], nil
}

func (r *memoryPredictionRepository) GetByCombination(_ context.Context, maleID, femaleID string) (*models.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[r.combinations[parentPair{male: maleID, female: femaleID}]]
	if !ok {
		return nil, models.NotFound("prediction", models.CombinationKey(maleID, femaleID))
	}
	return p, nil
}

func (r *memoryPredictionRepository) List(_ context.Context, q models.PageQuery) ([]*models.Prediction, int, error) {
	r.mu.RLock()
	all := make([]*models.Prediction, 0, len(r.byID))
	for _, p := range r.byID {
		all = append(all, p)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if q.Ascending() {
			return newer(all[j], all[i])
		}
		return newer(all[i], all[j])
	})

	total := len(all)
	start := q.Offset()
	if start >= total {
		return []*models.Prediction{}, total, nil
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *memoryPredictionRepository) ListCombinations(_ context.Context, filter models.CombinationFilter) ([]models.Combination, error) {
	r.mu.RLock()
	latest := make(map[parentPair]*models.Prediction)
	for _, p := range r.byID {
		if !filter.Accepts(p) {
			continue
		}
		pair := pairOf(p)
		if current, ok := latest[pair]; !ok || newer(p, current) {
			latest[pair] = p
		}
	}
	r.mu.RUnlock()

	return combinationsOf(latest), nil
}

func (r *memoryPredictionRepository) Close() error { return nil }

// combinationsOf lists one entry per pair, sorted by key. Distinct pairs that
// share a key are ordered by female then male id.
func combinationsOf(latest map[parentPair]*models.Prediction) []models.Combination {
	out := make([]models.Combination, 0, len(latest))
	for _, p := range latest {
		out = append(out, models.Combination{
			Key:            p.CombinationKey(),
			MaleStrainID:   p.MaleStrainID,
			FemaleStrainID: p.FemaleStrainID,
			PredictionID:   p.ID,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		if a.FemaleStrainID != b.FemaleStrainID {
			return a.FemaleStrainID < b.FemaleStrainID
		}
		return a.MaleStrainID < b.MaleStrainID
	})
	return out
}
