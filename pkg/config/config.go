package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/coordinates"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/parser"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/validation"
)

// EnvPrefix prefixes environment overrides, e.g. PGC_SAMPLING_FRACTION
const EnvPrefix = "PGC"

// Config manages run configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	columns := parser.DefaultColumns()
	v.SetDefault("input.path", "")
	v.SetDefault("input.columns.customer", columns.Customer)
	v.SetDefault("input.columns.category", columns.Category)
	v.SetDefault("input.columns.quantity", columns.Quantity)

	v.SetDefault("sampling.fraction", 0.005)
	v.SetDefault("sampling.seed", 42)

	categories := make([]map[string]any, 0, 4)
	for _, c := range models.DefaultCategories() {
		categories = append(categories, map[string]any{"label": c.Label, "code": c.Code})
	}
	v.SetDefault("categories", categories)

	v.SetDefault("algorithm.resolution", 1.0)

	layout := coordinates.DefaultConfig()
	v.SetDefault("layout.kind", string(layout.Kind))
	v.SetDefault("layout.iterations", layout.Iterations)
	v.SetDefault("layout.width", layout.Width)
	v.SetDefault("layout.height", layout.Height)
	v.SetDefault("layout.padding", layout.Padding)
	v.SetDefault("layout.seed", layout.Seed)

	v.SetDefault("output.clusters", "clusters.json")
	v.SetDefault("output.plot", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return &models.OpError{Op: "config.LoadFromFile", Kind: models.KindInvalidConfig, Path: path, Err: err}
	}
	return nil
}

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"input":      "input.path",
	"fraction":   "sampling.fraction",
	"seed":       "sampling.seed",
	"resolution": "algorithm.resolution",
	"layout":     "layout.kind",
	"iterations": "layout.iterations",
	"clusters":   "output.clusters",
	"plot":       "output.plot",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// BindFlags binds every known flag present in fs. Flags only override the
// file and environment when set explicitly.
func (c *Config) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := c.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Getters for common parameters
func (c *Config) InputPath() string { return c.v.GetString("input.path") }
func (c *Config) SampleFraction() float64 { return c.v.GetFloat64("sampling.fraction") }
func (c *Config) SampleSeed() uint64 { return c.v.GetUint64("sampling.seed") }
func (c *Config) Resolution() float64 { return c.v.GetFloat64("algorithm.resolution") }
func (c *Config) ClustersPath() string { return c.v.GetString("output.clusters") }
func (c *Config) PlotPath() string { return c.v.GetString("output.plot") }
func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }
func (c *Config) LogFormat() string { return c.v.GetString("logging.format") }
func (c *Config) ConfigFileUsed() string { return c.v.ConfigFileUsed() }
func (c *Config) AllSettings() map[string]any { return c.v.AllSettings() }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// Settings decodes and validates the full configuration
func (c *Config) Settings() (*Settings, error) {
	var s Settings
	if err := c.v.Unmarshal(&s); err != nil {
		return nil, &models.OpError{Op: "config.Settings", Kind: models.KindInvalidConfig, Err: err}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if c.LogFormat() == "json" {
		logger = zerolog.New(out)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		})
	}
	return logger.Level(level).With().Timestamp().Str("service", "purchase-graph").Logger()
}

// InputSettings locates the transaction table
type InputSettings struct {
	Path    string               `mapstructure:"path" validate:"required"`
	Columns parser.ColumnMapping `mapstructure:"columns"`
}

// SamplingSettings controls the reproducible row sample
type SamplingSettings struct {
	Fraction float64 `mapstructure:"fraction" validate:"gt=0,lte=1"`
	Seed     uint64  `mapstructure:"seed"`
}

// AlgorithmSettings tunes modularity
type AlgorithmSettings struct {
	Resolution float64 `mapstructure:"resolution" validate:"gt=0"`
}

// LayoutSettings controls node placement for rendering
type LayoutSettings struct {
	Kind       string  `mapstructure:"kind" validate:"oneof=force mds"`
	Iterations int     `mapstructure:"iterations" validate:"gte=1"`
	Width      float64 `mapstructure:"width" validate:"gt=0"`
	Height     float64 `mapstructure:"height" validate:"gt=0"`
	Padding    float64 `mapstructure:"padding" validate:"gte=0"`
	Seed       uint64  `mapstructure:"seed"`
}

// OutputSettings names the artifacts of a run
type OutputSettings struct {
	Clusters string `mapstructure:"clusters" validate:"required"`
	Plot     string `mapstructure:"plot"`
}

// LoggingSettings configures the logger
type LoggingSettings struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// Settings is the decoded run configuration
type Settings struct {
	Input      InputSettings         `mapstructure:"input"`
	Sampling   SamplingSettings      `mapstructure:"sampling"`
	Categories []models.CategoryCode `mapstructure:"categories" validate:"required,min=1,dive"`
	Algorithm  AlgorithmSettings     `mapstructure:"algorithm"`
	Layout     LayoutSettings        `mapstructure:"layout"`
	Output     OutputSettings        `mapstructure:"output"`
	Logging    LoggingSettings       `mapstructure:"logging"`
}

// Validate checks struct tags, the category table and the plot path
func (s *Settings) Validate() error {
	if err := validation.ValidateStruct(s); err != nil {
		return err
	}
	if _, err := models.NewCategoryTable(s.Categories); err != nil {
		return &models.OpError{Op: "config.Validate", Kind: models.KindInvalidConfig, Err: err}
	}
	if err := validation.ValidatePlotPath(s.Output.Plot); err != nil {
		return err
	}
	return nil
}

// CategoryTable builds the label lookup
func (s *Settings) CategoryTable() (models.CategoryTable, error) {
	return models.NewCategoryTable(s.Categories)
}

// LoadOptions converts settings into loader options
func (s *Settings) LoadOptions(logger zerolog.Logger) (parser.LoadOptions, error) {
	table, err := s.CategoryTable()
	if err != nil {
		return parser.LoadOptions{}, err
	}
	return parser.LoadOptions{
		Columns:    s.Input.Columns,
		Fraction:   s.Sampling.Fraction,
		Seed:       s.Sampling.Seed,
		Categories: table,
		Logger:     logger,
	}, nil
}

// LayoutConfig converts settings into a layout configuration
func (s *Settings) LayoutConfig() coordinates.Config {
	return coordinates.Config{
		Kind:       coordinates.Kind(s.Layout.Kind),
		Width:      s.Layout.Width,
		Height:     s.Layout.Height,
		Padding:    s.Layout.Padding,
		Iterations: s.Layout.Iterations,
		Seed:       s.Layout.Seed,
	}
}
