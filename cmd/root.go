package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/fitcorr/internal/config"
	"github.com/KaramelBytes/fitcorr/internal/logging"
	"github.com/KaramelBytes/fitcorr/internal/memo"
	"github.com/KaramelBytes/fitcorr/internal/metrics"
	"github.com/KaramelBytes/fitcorr/internal/pipeline"
	"github.com/KaramelBytes/fitcorr/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	flagDataDir  string
	flagDataFile string

	// Loaded configuration and logger
	cfg    *cfgpkg.Global
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fitcorr",
	Short: "fitcorr: find the strongest correlations in fitness measurement data",
	Long: `fitcorr loads a CSV or XLSX export of physical-fitness measurements, keeps the
recognized numeric metrics and reports the most positively and most negatively
correlated pair of measurements, the full correlation matrix and a heatmap table.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.fitcorr/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding the data file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDataFile, "file", "", "data file name or path (overrides config)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	// Apply CLI overrides if provided (via cmd.Root: rootCmd's initializer refers to loadConfig)
	f := cmd.Root().PersistentFlags()
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if f.Changed("file") && flagDataFile != "" {
		cfg.DataFile = flagDataFile
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	l, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// newPipeline wires the analysis pipeline with its cache and metrics. The
// returned close func releases the cache.
func newPipeline(reg prometheus.Registerer) (*pipeline.Pipeline, func(), error) {
	m := metrics.New(reg)
	cache, err := memo.New(cfg.CacheMaxCost, m)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.New(cache, m, logger, cfg.DatasetOptions()), cache.Close, nil
}

// dataPath is the positional file argument if given, else the configured file.
func dataPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.DataPath()
}

// writeOutput writes b to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, b []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(b)
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}

// withNewline ensures terminal output ends cleanly.
func withNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}
	return b
}

