package main

import (
	"fmt"

	"brai/internal/config"
	"brai/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every dataset and model and report what was found",
		Long: `Loads each configured dataset and model, including trained artifacts,
and prints a one-line summary per item. Exits non-zero on the first failure,
for example a CSV file that none of the configured encodings can decode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runCheck(cmd, cfg, zap.NewNop())
		},
	}
}

func runCheck(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	catalogs, err := server.BuildCatalogs(ctx, cfg, logger)
	if err != nil {
		return err
	}

	datasetIDs, err := catalogs.Datasets.ListDatasets(ctx)
	if err != nil {
		return err
	}
	for _, id := range datasetIDs {
		ds, err := catalogs.Datasets.GetDataset(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "dataset %s: %d strains, %d traits, %d SNPs\n",
			ds.ID, len(ds.Strains), len(ds.Phenotype), ds.SNPInfo.NumberOfSNP)
	}

	modelIDs, err := catalogs.Models.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, id := range modelIDs {
		m, err := catalogs.Models.GetModel(ctx, id)
		if err != nil {
			return err
		}
		set, err := catalogs.Models.Regressors(ctx, id)
		if err != nil {
			return err
		}
		if set == nil {
			fmt.Fprintf(out, "model %s: baseline\n", m.ID)
			continue
		}
		fmt.Fprintf(out, "model %s: advanced, %d traits, %d lines\n", m.ID, len(set.ByTrait), set.PCs.Len())
	}

	fmt.Fprintf(out, "ok: %d datasets, %d models\n", len(datasetIDs), len(modelIDs))
	return nil
}
