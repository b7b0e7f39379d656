package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Cleaning
	DropColumns    []string `mapstructure:"drop_columns" yaml:"drop_columns"`
	DateColumn     string   `mapstructure:"date_column" yaml:"date_column" validate:"required"`
	DateLayouts    []string `mapstructure:"date_layouts" yaml:"date_layouts" validate:"min=1,dive,required"`
	NumericColumns []string `mapstructure:"numeric_columns" yaml:"numeric_columns"`

	// Column roles used by the aggregates
	OutcomeColumn string `mapstructure:"outcome_column" yaml:"outcome_column" validate:"required"`
	HorseColumn   string `mapstructure:"horse_column" yaml:"horse_column" validate:"required"`
	WeatherColumn string `mapstructure:"weather_column" yaml:"weather_column" validate:"required"`
	TrackColumn   string `mapstructure:"track_column" yaml:"track_column" validate:"required"`
	WeightColumn  string `mapstructure:"weight_column" yaml:"weight_column" validate:"required"`

	// Loading and profiling
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter" validate:"omitempty,delimiter"`
	MaxRows    int    `mapstructure:"max_rows" yaml:"max_rows" validate:"gte=0"`
	SampleRows int    `mapstructure:"sample_rows" yaml:"sample_rows" validate:"gte=0"`

	// Rendering
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins" validate:"gte=1,lte=200"`
	ChartWidth    int    `mapstructure:"chart_width" yaml:"chart_width" validate:"gte=200"`
	ChartHeight   int    `mapstructure:"chart_height" yaml:"chart_height" validate:"gte=200"`
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`
}

// DefaultDropColumns lists the columns that are entirely null in the race dataset.
var DefaultDropColumns = []string{"Hood", "Eyecover", "EyeShield", "CheekPieces", "TongueStrap", "ScheduledTime"}

// DefaultDateLayouts are tried in order when coercing the meeting date.
var DefaultDateLayouts = []string{
	"2006-01-02", "2006-01-02T15:04:05Z07:00", "2006-01-02 15:04:05", "2006-01-02 15:04",
	"01/02/2006", "02/01/2006", "2006/01/02", "02-Jan-2006", "2 Jan 2006",
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.raceda/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := homeConfigDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.raceda/config.yaml) > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(cfgFile string) (*Global, error) {
	// .env is optional; real environment variables are never overwritten.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RACEDA")
	v.AutomaticEnv()

	v.SetDefault("drop_columns", DefaultDropColumns)
	v.SetDefault("date_column", "MeetingDate")
	v.SetDefault("date_layouts", DefaultDateLayouts)
	v.SetDefault("numeric_columns", []string{"StartingPrice", "ForecastPrice"})
	v.SetDefault("outcome_column", "Won")
	v.SetDefault("horse_column", "HorseID")
	v.SetDefault("weather_column", "Weather")
	v.SetDefault("track_column", "TrackType")
	v.SetDefault("weight_column", "WeightValue")
	v.SetDefault("delimiter", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("sample_rows", 5)
	v.SetDefault("histogram_bins", 20)
	v.SetDefault("chart_width", 1000)
	v.SetDefault("chart_height", 600)
	v.SetDefault("output_dir", "raceda-out")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := homeConfigDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the built-in configuration without consulting files or env.
func Default() *Global {
	return &Global{
		DropColumns:    append([]string(nil), DefaultDropColumns...),
		DateColumn:     "MeetingDate",
		DateLayouts:    append([]string(nil), DefaultDateLayouts...),
		NumericColumns: []string{"StartingPrice", "ForecastPrice"},
		OutcomeColumn:  "Won",
		HorseColumn:    "HorseID",
		WeatherColumn:  "Weather",
		TrackColumn:    "TrackType",
		WeightColumn:   "WeightValue",
		SampleRows:     5,
		HistogramBins:  20,
		ChartWidth:     1000,
		ChartHeight:    600,
		OutputDir:      "raceda-out",
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("delimiter", isDelimiter)
	return v
}

// delimiters maps accepted delimiter names to the rune they select.
var delimiters = map[string]rune{",": ',', ";": ';', "tab": '\t', "\t": '\t', "|": '|'}

func isDelimiter(fl validator.FieldLevel) bool {
	_, ok := delimiters[fl.Field().String()]
	return ok
}

// Validate checks field constraints declared in struct tags.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DelimiterRune maps the configured delimiter name to a rune; 0 means auto-detect.
func (c *Global) DelimiterRune() rune {
	return delimiters[c.Delimiter]
}

func homeConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".raceda"), nil
}
