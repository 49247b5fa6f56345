package repository

import (
	"context"
	"sort"

	"brai/internal/models"
)

// DatasetRepository resolves dataset metadata.
type DatasetRepository interface {
	ListDatasets(ctx context.Context) ([]string, error)
	GetDataset(ctx context.Context, id string) (*models.Dataset, error)
}

// StrainRepository resolves strains and their raw phenotype values. An empty
// datasetID searches every dataset.
type StrainRepository interface {
	GetStrain(ctx context.Context, id, datasetID string) (*models.Strain, error)
}

// StaticCatalog serves datasets and strains from in-memory tables.
type StaticCatalog struct {
	datasets map[string]models.Dataset
	strains  map[string]models.Strain
}

// NewStaticCatalog serves the built-in dataset and strain tables.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{datasets: staticDatasets, strains: staticStrains}
}

func (c *StaticCatalog) ListDatasets(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(c.datasets))
	for id := range c.datasets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (c *StaticCatalog) GetDataset(_ context.Context, id string) (*models.Dataset, error) {
	ds, ok := c.datasets[id]
	if !ok {
		return nil, models.NotFound("dataset", id)
	}
	return cloneDataset(&ds), nil
}

func (c *StaticCatalog) GetStrain(_ context.Context, id, datasetID string) (*models.Strain, error) {
	if datasetID != "" {
		if _, ok := c.datasets[datasetID]; !ok {
			return nil, models.NotFound("dataset", datasetID)
		}
	}
	s, ok := c.strains[id]
	if !ok || (datasetID != "" && s.DatasetID != datasetID) {
		return nil, models.NotFound("strain", id)
	}
	return cloneStrain(&s), nil
}

func cloneDataset(ds *models.Dataset) *models.Dataset {
	out := *ds
	out.Strains = append([]string(nil), ds.Strains...)
	out.Phenotype = append([]string(nil), ds.Phenotype...)
	out.SNPInfo.Chr = append([]string(nil), ds.SNPInfo.Chr...)
	out.SNPInfo.BP = append([]string(nil), ds.SNPInfo.BP...)
	return &out
}

func cloneStrain(s *models.Strain) *models.Strain {
	out := *s
	out.Phenotype = make(map[string]models.TraitValue, len(s.Phenotype))
	for k, v := range s.Phenotype {
		out.Phenotype[k] = v
	}
	if s.Metadata != nil {
		meta := *s.Metadata
		out.Metadata = &meta
	}
	return &out
}
