package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"brai/internal/artifact"
	"brai/internal/csvload"
	"brai/internal/models"
	"brai/internal/regressor"

	"go.uber.org/zap"
)

const (
	descriptionFile = "description.json"
	metaFile        = "model_meta.json"
	linePCsFile     = "line_pcs.csv"
)

// ModelRepository resolves model metadata and trained artifacts. Regressors
// returns nil for models without trained artifacts.
type ModelRepository interface {
	ListModels(ctx context.Context) ([]string, error)
	GetModel(ctx context.Context, id string) (*models.Model, error)
	Regressors(ctx context.Context, id string) (*regressor.Set, error)
}

type staticModelRepository struct {
	models map[string]models.Model
}

// NewStaticModelRepository serves the built-in baseline models.
func NewStaticModelRepository() ModelRepository {
	return &staticModelRepository{models: staticModels}
}

func (r *staticModelRepository) ListModels(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.models))
	for id := range r.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *staticModelRepository) GetModel(_ context.Context, id string) (*models.Model, error) {
	m, ok := r.models[id]
	if !ok {
		return nil, models.NotFound("model", id)
	}
	return &m, nil
}

func (r *staticModelRepository) Regressors(ctx context.Context, id string) (*regressor.Set, error) {
	if _, err := r.GetModel(ctx, id); err != nil {
		return nil, err
	}
	return nil, nil
}

type fileModelRepository struct {
	source    artifact.Source
	encodings []string
	client    *regressor.Client
	logger    *zap.Logger

	mu   sync.RWMutex
	meta map[string]*models.Model
	sets map[string]*regressor.Set
}

// NewFileModelRepository discovers model folders on source. A folder is a
// model when it holds both description.json and model_meta.json.
func NewFileModelRepository(source artifact.Source, encodings []string, client *regressor.Client, logger *zap.Logger) ModelRepository {
	return &fileModelRepository{
		source:    source,
		encodings: encodings,
		client:    client,
		logger:    logger,
		meta:      make(map[string]*models.Model),
		sets:      make(map[string]*regressor.Set),
	}
}

func (r *fileModelRepository) ListModels(ctx context.Context) ([]string, error) {
	dirs, err := r.source.Dirs(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	ids := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		ok, err := r.isModelDir(ctx, dir)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, dir)
		}
	}
	return ids, nil
}

func (r *fileModelRepository) isModelDir(ctx context.Context, dir string) (bool, error) {
	for _, name := range []string{descriptionFile, metaFile} {
		rc, err := r.source.Open(ctx, artifact.Join(dir, name))
		if err != nil {
			if errors.Is(err, artifact.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("model %s: %w", dir, err)
		}
		rc.Close()
	}
	return true, nil
}

func (r *fileModelRepository) GetModel(ctx context.Context, id string) (*models.Model, error) {
	r.mu.RLock()
	m, ok := r.meta[id]
	r.mu.RUnlock()
	if ok {
		return cloneModel(m), nil
	}
	if !validID(id) {
		return nil, models.NotFound("model", id)
	}

	m = &models.Model{}
	for _, name := range []string{descriptionFile, metaFile} {
		if err := r.decodeJSON(ctx, id, name, m); err != nil {
			return nil, err
		}
	}
	// The folder name is the lookup key regardless of what the files declare.
	m.ID = id
	if m.Name == "" {
		m.Name = id
	}
	m.Advanced = len(m.Traits) > 0

	r.mu.Lock()
	r.meta[id] = m
	r.mu.Unlock()
	return cloneModel(m), nil
}

func (r *fileModelRepository) decodeJSON(ctx context.Context, id, name string, v any) error {
	rc, err := r.source.Open(ctx, artifact.Join(id, name))
	if err != nil {
		if errors.Is(err, artifact.ErrNotExist) {
			return models.NotFound("model", id)
		}
		return fmt.Errorf("model %s: %w", id, err)
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("model %s: failed to decode %s: %w", id, name, err)
	}
	return nil
}

func (r *fileModelRepository) Regressors(ctx context.Context, id string) (*regressor.Set, error) {
	r.mu.RLock()
	set, ok := r.sets[id]
	r.mu.RUnlock()
	if ok {
		return set, nil
	}

	m, err := r.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(m.Traits) == 0 {
		return nil, nil
	}

	set, err = r.loadSet(ctx, m)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	// A concurrent loader may have won; keep the first set so callers share it.
	if existing, ok := r.sets[id]; ok {
		set = existing
	} else {
		r.sets[id] = set
	}
	r.mu.Unlock()
	return set, nil
}

func (r *fileModelRepository) loadSet(ctx context.Context, m *models.Model) (*regressor.Set, error) {
	pcsKey := artifact.Join(m.ID, linePCsFile)
	rc, err := r.source.Open(ctx, pcsKey)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", m.ID, err)
	}
	table, err := csvload.Parse(rc, pcsKey, r.encodings)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", m.ID, err)
	}
	pcs, err := regressor.NewPCTable(table.Header, table.Rows)
	if err != nil {
		return nil, fmt.Errorf("model %s: %s: %w", m.ID, linePCsFile, err)
	}
	if m.NPcs > pcs.Components() {
		return nil, fmt.Errorf("model %s: nPcs is %d but %s has %d components", m.ID, m.NPcs, linePCsFile, pcs.Components())
	}

	set := &regressor.Set{
		PCs:        pcs,
		NPcs:       m.NPcs,
		ByTrait:    make(map[string]regressor.Regressor, len(m.Traits)),
		Confidence: m.Confidence,
	}
	for _, trait := range m.Traits {
		name := m.Artifacts[trait]
		if name == "" {
			name = trait + ".json"
		}
		reg, err := r.loadRegressor(ctx, m.ID, trait, name)
		if err != nil {
			return nil, err
		}
		set.ByTrait[trait] = reg
	}

	r.logger.Info("Model artifacts loaded",
		zap.String("model_id", m.ID),
		zap.String("source", string(r.source.Driver())),
		zap.Int("traits", len(set.ByTrait)),
		zap.Int("lines", pcs.Len()))
	return set, nil
}

func (r *fileModelRepository) loadRegressor(ctx context.Context, modelID, trait, name string) (regressor.Regressor, error) {
	rc, err := r.source.Open(ctx, artifact.Join(modelID, name))
	if err != nil {
		return nil, fmt.Errorf("model %s trait %s: %w", modelID, trait, err)
	}
	defer rc.Close()

	reg, err := regressor.Decode(rc, modelID, trait, r.client)
	if err != nil {
		return nil, fmt.Errorf("model %s trait %s: %w", modelID, trait, err)
	}
	return reg, nil
}

func cloneModel(m *models.Model) *models.Model {
	out := *m
	out.Traits = append([]string(nil), m.Traits...)
	out.LineIDs = append([]string(nil), m.LineIDs...)
	if m.Confidence != nil {
		out.Confidence = make(map[string]float64, len(m.Confidence))
		for k, v := range m.Confidence {
			out.Confidence[k] = v
		}
	}
	if m.Artifacts != nil {
		out.Artifacts = make(map[string]string, len(m.Artifacts))
		for k, v := range m.Artifacts {
			out.Artifacts[k] = v
		}
	}
	return &out
}
