package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/raceda/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set raceda configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("drop_columns: %s\n", strings.Join(cfg.DropColumns, ","))
		fmt.Printf("date_column: %s\n", cfg.DateColumn)
		fmt.Printf("date_layouts: %s\n", strings.Join(cfg.DateLayouts, ","))
		fmt.Printf("numeric_columns: %s\n", strings.Join(cfg.NumericColumns, ","))
		fmt.Printf("outcome_column: %s\n", cfg.OutcomeColumn)
		fmt.Printf("horse_column: %s\n", cfg.HorseColumn)
		fmt.Printf("weather_column: %s\n", cfg.WeatherColumn)
		fmt.Printf("track_column: %s\n", cfg.TrackColumn)
		fmt.Printf("weight_column: %s\n", cfg.WeightColumn)
		if cfg.Delimiter != "" {
			fmt.Printf("delimiter: %s\n", cfg.Delimiter)
		}
		fmt.Printf("max_rows: %d\n", cfg.MaxRows)
		fmt.Printf("sample_rows: %d\n", cfg.SampleRows)
		fmt.Printf("histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Printf("chart_width: %d\n", cfg.ChartWidth)
		fmt.Printf("chart_height: %d\n", cfg.ChartHeight)
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		c := *cfg
		switch key {
		case "drop_columns":
			c.DropColumns = splitList(val)
		case "date_column":
			c.DateColumn = val
		case "date_layouts":
			c.DateLayouts = splitList(val)
		case "numeric_columns":
			c.NumericColumns = splitList(val)
		case "outcome_column":
			c.OutcomeColumn = val
		case "horse_column":
			c.HorseColumn = val
		case "weather_column":
			c.WeatherColumn = val
		case "track_column":
			c.TrackColumn = val
		case "weight_column":
			c.WeightColumn = val
		case "delimiter":
			c.Delimiter = val
		case "max_rows", "sample_rows", "histogram_bins", "chart_width", "chart_height":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %w", key, err)
			}
			switch key {
			case "max_rows":
				c.MaxRows = i
			case "sample_rows":
				c.SampleRows = i
			case "histogram_bins":
				c.HistogramBins = i
			case "chart_width":
				c.ChartWidth = i
			case "chart_height":
				c.ChartHeight = i
			}
		case "output_dir":
			c.OutputDir = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&c, cfgFile); err != nil {
			return err
		}
		cfg = &c
		fmt.Println("Saved config")
		return nil
	},
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home dir: %w", err)
			}
			path = filepath.Join(home, ".raceda", "config.yaml")
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}
		if err := cfgpkg.Save(cfgpkg.Default(), cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
