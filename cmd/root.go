package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/raceda/internal/config"
	"github.com/KaramelBytes/raceda/internal/logging"
	"github.com/KaramelBytes/raceda/internal/pipeline"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Structured logger for pipeline diagnostics (stderr, JSON)
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "raceda",
	Short: "raceda: exploratory analysis of horse-race results",
	Long: `raceda loads a table of horse-race results, profiles it, cleans it and
renders the standard charts: correlation heatmap, win/loss mix, weight by
outcome, races over time, weight and win histograms, and wins by weather
and track type.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.raceda/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	if l, err := logging.New(debug); err == nil {
		logger = l
	} else {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to build logger: %v\n", err)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c
	logger.Debug("config loaded", zap.String("output_dir", cfg.OutputDir), zap.String("date_column", cfg.DateColumn))
}

// effectiveConfig returns a copy of the loaded configuration with the shared
// data flags applied on top.
func effectiveConfig(cmd *cobra.Command) (*cfgpkg.Global, error) {
	base := cfg
	if base == nil {
		base = cfgpkg.Default()
	}
	c := *base
	f := cmd.Flags()
	if f.Changed("delimiter") {
		c.Delimiter = flagDelimiter
	}
	if f.Changed("max-rows") {
		c.MaxRows = flagMaxRows
	}
	if f.Changed("sample-rows") {
		c.SampleRows = flagSampleRows
	}
	if f.Changed("out") {
		c.OutputDir = flagOutDir
	}
	if f.Changed("bins") {
		c.HistogramBins = flagBins
	}
	if f.Changed("width") {
		c.ChartWidth = flagWidth
	}
	if f.Changed("height") {
		c.ChartHeight = flagHeight
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// newRunner builds a pipeline runner from the effective configuration.
func newRunner(cmd *cobra.Command) (*pipeline.Runner, error) {
	c, err := effectiveConfig(cmd)
	if err != nil {
		return nil, err
	}
	opt := pipeline.FromConfig(c)
	opt.Load.Sheet = flagSheet
	return pipeline.New(logger, opt), nil
}

// Shared data flags, registered per command by addDataFlags.
var (
	flagDelimiter  string
	flagMaxRows    int
	flagSampleRows int
	flagSheet      string
	flagOutDir     string
	flagBins       int
	flagWidth      int
	flagHeight     int
)

func addDataFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagDelimiter, "delimiter", "", "delimiter: ',' | ';' | 'tab' | '|' (auto-detect if omitted)")
	c.Flags().IntVar(&flagMaxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
	c.Flags().StringVar(&flagSheet, "sheet", "", "XLSX: sheet name (first sheet if omitted)")
}

func addRenderFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagOutDir, "out", "", "output directory (overrides config output_dir)")
	c.Flags().IntVar(&flagBins, "bins", 20, "histogram bins")
	c.Flags().IntVar(&flagWidth, "width", 1000, "chart width in pixels")
	c.Flags().IntVar(&flagHeight, "height", 600, "chart height in pixels")
}
