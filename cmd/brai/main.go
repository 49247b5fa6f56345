package main

import (
	"fmt"
	"os"

	"brai/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

const defaultConfigPath = "configs/config.yml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "brai",
		Short:         "BRAI breeding prediction API",
		Long:          "Serves datasets, strains, models and cross predictions for plant breeding.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newCheckCmd(&configPath),
		newTokenCmd(&configPath),
	)
	return root
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
