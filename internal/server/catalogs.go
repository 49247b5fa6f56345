package server

import (
	"context"
	"fmt"
	"time"

	"brai/internal/artifact"
	"brai/internal/config"
	"brai/internal/regressor"
	"brai/internal/repository"

	"go.uber.org/zap"
)

// Catalogs bundles the read-side repositories selected by configuration.
type Catalogs struct {
	Datasets repository.DatasetRepository
	Strains  repository.StrainRepository
	Models   repository.ModelRepository
}

// BuildCatalogs opens the dataset, strain and model sources named in cfg.
func BuildCatalogs(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Catalogs, error) {
	c := &Catalogs{}

	switch cfg.Data.Mode {
	case config.ModeCSV:
		catalog, err := repository.NewCSVCatalog(cfg.Data.DatasetRoot, cfg.Data.Encodings, logger)
		if err != nil {
			return nil, err
		}
		c.Datasets, c.Strains = catalog, catalog
		logger.Info("Serving datasets from CSV", zap.String("root", cfg.Data.DatasetRoot), zap.Strings("encodings", cfg.Data.Encodings))
	default:
		catalog := repository.NewStaticCatalog()
		c.Datasets, c.Strains = catalog, catalog
		logger.Info("Serving built-in datasets")
	}

	switch cfg.Models.Mode {
	case config.ModeFile:
		source, err := openSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client := regressor.NewClient(time.Duration(cfg.Scoring.TimeoutSeconds) * time.Second)
		c.Models = repository.NewFileModelRepository(source, cfg.Data.Encodings, client, logger)
		logger.Info("Serving models from artifacts", zap.String("source", string(source.Driver())))
	default:
		c.Models = repository.NewStaticModelRepository()
		logger.Info("Serving built-in models")
	}

	return c, nil
}

func openSource(ctx context.Context, cfg *config.Config) (artifact.Source, error) {
	switch artifact.Driver(cfg.Models.Source) {
	case artifact.DriverS3:
		source, err := artifact.NewS3Source(ctx, cfg.Models.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to open model bucket: %w", err)
		}
		return source, nil
	default:
		source, err := artifact.NewFSSource(cfg.Models.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to open model root: %w", err)
		}
		return source, nil
	}
}
