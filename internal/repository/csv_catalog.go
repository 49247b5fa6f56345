package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"brai/internal/csvload"
	"brai/internal/models"

	"go.uber.org/zap"
)

const (
	strainsFile   = "strains/strains.csv"
	phenotypeFile = "phenotype/phenotype.csv"
)

// CSVCatalog reads datasets from <root>/<id>/strains/strains.csv and
// <root>/<id>/phenotype/phenotype.csv. Parsed files are cached for the
// lifetime of the process.
type CSVCatalog struct {
	root      string
	encodings []string
	logger    *zap.Logger

	mu         sync.RWMutex
	datasets   map[string]*models.Dataset
	phenotypes map[string]*csvload.Table
}

// NewCSVCatalog creates a catalog rooted at root.
func NewCSVCatalog(root string, encodings []string, logger *zap.Logger) (*CSVCatalog, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("dataset root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset root %s is not a directory", root)
	}
	if len(encodings) == 0 {
		encodings = csvload.DefaultEncodings
	}
	return &CSVCatalog{
		root:       root,
		encodings:  encodings,
		logger:     logger,
		datasets:   make(map[string]*models.Dataset),
		phenotypes: make(map[string]*csvload.Table),
	}, nil
}

func (c *CSVCatalog) ListDatasets(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (c *CSVCatalog) GetDataset(_ context.Context, id string) (*models.Dataset, error) {
	c.mu.RLock()
	ds, ok := c.datasets[id]
	c.mu.RUnlock()
	if ok {
		return cloneDataset(ds), nil
	}

	dir, err := c.datasetDir(id)
	if err != nil {
		return nil, err
	}

	strains, err := csvload.ReadFile(filepath.Join(dir, strainsFile), c.encodings)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", id, err)
	}
	phenotype, err := c.phenotypeTable(id, dir)
	if err != nil {
		return nil, err
	}

	ds = &models.Dataset{
		ID:        id,
		Name:      id,
		Strains:   nonEmpty(strains.Header, 3),
		Phenotype: nonEmpty(phenotype.Header, 1),
		SNPInfo: models.SNPInfo{
			Chr: make([]string, 0, len(strains.Rows)),
			BP:  make([]string, 0, len(strains.Rows)),
		},
	}
	for _, row := range strains.Rows {
		ds.SNPInfo.Chr = append(ds.SNPInfo.Chr, csvload.Cell(row, 1))
		ds.SNPInfo.BP = append(ds.SNPInfo.BP, csvload.Cell(row, 2))
	}
	ds.SNPInfo.NumberOfSNP = len(strains.Rows)

	c.mu.Lock()
	c.datasets[id] = ds
	c.mu.Unlock()

	c.logger.Info("Dataset loaded",
		zap.String("dataset_id", id),
		zap.Int("strains", len(ds.Strains)),
		zap.Int("snps", ds.SNPInfo.NumberOfSNP),
		zap.String("encoding", strains.Encoding))

	return cloneDataset(ds), nil
}

// GetStrain looks id up in datasetID, or in every dataset when datasetID is
// empty. An unreadable dataset only fails the lookup when it was named.
func (c *CSVCatalog) GetStrain(ctx context.Context, id, datasetID string) (*models.Strain, error) {
	scanAll := datasetID == ""
	ids := []string{datasetID}
	if scanAll {
		var err error
		if ids, err = c.ListDatasets(ctx); err != nil {
			return nil, err
		}
	}

	for _, dsID := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, dir, err := c.openPhenotype(dsID)
		if err != nil {
			if !scanAll {
				return nil, err
			}
			c.logger.Warn("Skipping unreadable dataset",
				zap.String("dataset_id", dsID),
				zap.String("strain_id", id),
				zap.Error(err))
			continue
		}
		if row, ok := findRow(table, id); ok {
			return strainFromRow(id, dsID, filepath.Join(dir, phenotypeFile), table.Header, row), nil
		}
	}
	return nil, models.NotFound("strain", id)
}

func (c *CSVCatalog) openPhenotype(id string) (*csvload.Table, string, error) {
	dir, err := c.datasetDir(id)
	if err != nil {
		return nil, "", err
	}
	table, err := c.phenotypeTable(id, dir)
	if err != nil {
		return nil, "", err
	}
	return table, dir, nil
}

func findRow(table *csvload.Table, id string) ([]string, bool) {
	for _, row := range table.Rows {
		if csvload.Cell(row, 0) == id {
			return row, true
		}
	}
	return nil, false
}

func (c *CSVCatalog) datasetDir(id string) (string, error) {
	if !validID(id) {
		return "", models.NotFound("dataset", id)
	}
	dir := filepath.Join(c.root, id)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", models.NotFound("dataset", id)
		}
		return "", fmt.Errorf("dataset %s: %w", id, err)
	}
	if !info.IsDir() {
		return "", models.NotFound("dataset", id)
	}
	return dir, nil
}

func (c *CSVCatalog) phenotypeTable(id, dir string) (*csvload.Table, error) {
	c.mu.RLock()
	table, ok := c.phenotypes[id]
	c.mu.RUnlock()
	if ok {
		return table, nil
	}

	table, err := csvload.ReadFile(filepath.Join(dir, phenotypeFile), c.encodings)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", id, err)
	}

	c.mu.Lock()
	c.phenotypes[id] = table
	c.mu.Unlock()
	return table, nil
}

func strainFromRow(id, datasetID, source string, header, row []string) *models.Strain {
	strain := &models.Strain{
		ID:        id,
		Name:      id,
		Type:      models.StrainBoth,
		DatasetID: datasetID,
		Phenotype: make(map[string]models.TraitValue),
		Metadata:  &models.StrainMetadata{Source: source},
	}
	for i := 1; i < len(header); i++ {
		if header[i] == "" {
			continue
		}
		if v, ok := models.ParseTraitValue(csvload.Cell(row, i)); ok {
			strain.Phenotype[header[i]] = v
		}
	}
	return strain
}

// validID reports whether id can name a folder directly below a root.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// nonEmpty returns the trimmed, non-blank cells of header from index start on.
func nonEmpty(header []string, start int) []string {
	out := make([]string, 0, len(header))
	for i := start; i < len(header); i++ {
		if cell := strings.TrimSpace(header[i]); cell != "" {
			out = append(out, cell)
		}
	}
	return out
}
