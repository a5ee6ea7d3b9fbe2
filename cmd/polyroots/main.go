package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"polyroots/internal/config"
	"polyroots/internal/logging"
)

var (
	// Global flags
	verbose bool
	dataDir string
	workers int

	// Loaded configuration
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "polyroots",
	Short: "polyroots - roots of ±1 polynomials as a heat map",
	Long: `polyroots computes the complex roots of every degree-d monic polynomial
whose non-leading coefficients are +1 or -1, persists the resulting point
cloud, and aggregates it into a log-compressed 2D histogram.

Rendering is out of scope: the heatmap command emits grid data and the
statistics a renderer needs for percentile-based color normalization.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// Load config; flags win over file and environment.
		cfg, err = config.Load(configPath())
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if workers > 0 {
			cfg.Compute.Workers = workers
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := logging.Initialize(cfg.DataDir); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// configPath locates config.yaml, honoring the --data-dir override.
func configPath() string {
	if dataDir != "" {
		return filepath.Join(dataDir, "config.yaml")
	}
	return filepath.Join(config.DefaultConfig().DataDir, "config.yaml")
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Data directory (default: ~/.polyroots)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "Worker pool size (default: hardware parallelism)")

	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
