// Package config loads the CLI configuration from file, environment and
// flags.
package config

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jverbeke/go-crashstats/regression"
)

var (
	ErrNoInput       = errors.New("input.source is required")
	ErrBadFormat     = errors.New("output.format must be table or json")
	ErrBadDelimiter  = errors.New("input.delimiter must be a single character")
	ErrBadIterations = errors.New("fitter.max_iterations must be at least 1")
)

// Config represents the complete application configuration.
type Config struct {
	Input  InputConfig   `mapstructure:"input"`
	Models []ModelConfig `mapstructure:"models"`
	Fitter FitterConfig  `mapstructure:"fitter"`
	Output OutputConfig  `mapstructure:"output"`
}

// InputConfig holds the dataset source configuration.
type InputConfig struct {
	// Source is a local path, http(s) URL or s3:// URI.
	Source string `mapstructure:"source"`

	// Strict aborts the load on the first malformed row instead of
	// rejecting it.
	Strict bool `mapstructure:"strict"`

	// Delimiter forces the field separator. Empty sniffs it from the
	// header.
	Delimiter string `mapstructure:"delimiter"`
}

// ModelConfig describes one regression model to fit.
type ModelConfig struct {
	Name       string   `mapstructure:"name"`
	Outcome    string   `mapstructure:"outcome"`
	Predictors []string `mapstructure:"predictors"`
	Family     string   `mapstructure:"family"`
}

// FitterConfig holds the model fitting configuration.
type FitterConfig struct {
	MaxIterations int     `mapstructure:"max_iterations"`
	Tolerance     float64 `mapstructure:"tolerance"`
	Significance  float64 `mapstructure:"significance"`
}

// OutputConfig holds the report output configuration.
type OutputConfig struct {
	// Format is table or json.
	Format string `mapstructure:"format"`

	// Path writes the report to a file instead of standard output.
	Path string `mapstructure:"path"`

	// Plot writes the HTML chart page to this path.
	Plot string `mapstructure:"plot"`

	// Parquet exports the clean dataset to this path.
	Parquet string `mapstructure:"parquet"`
}

// Load reads configuration from an optional config file and the environment.
// An empty path searches for crashstats.yaml in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	return LoadViper(v, path)
}

// LoadViper reads configuration through an existing viper instance so the CLI
// can bind flags before the unmarshal.
func LoadViper(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("crashstats")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("CRASHSTATS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file, %w", err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.strict", false)
	v.SetDefault("input.delimiter", "")

	v.SetDefault("fitter.max_iterations", 25)
	v.SetDefault("fitter.tolerance", 1e-8)
	v.SetDefault("fitter.significance", 0.05)

	v.SetDefault("output.format", "table")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if len(c.Input.Delimiter) > 1 {
		return ErrBadDelimiter
	}
	if c.Fitter.MaxIterations < 1 {
		return ErrBadIterations
	}
	if c.Output.Format != "table" && c.Output.Format != "json" {
		return ErrBadFormat
	}
	for i, m := range c.Models {
		if _, err := regression.ParseSpecFamily(m.Family); err != nil {
			return fmt.Errorf("models[%d], %w", i, err)
		}
	}
	return nil
}

// Specs converts the configured models into regression specs.
func (c *Config) Specs() []*regression.Spec {
	if len(c.Models) == 0 {
		return nil
	}
	specs := make([]*regression.Spec, 0, len(c.Models))
	for _, m := range c.Models {
		family, err := regression.ParseSpecFamily(m.Family)
		if err != nil {
			family = regression.FamilyAuto
		}
		specs = append(specs, &regression.Spec{
			Name:       m.Name,
			Outcome:    m.Outcome,
			Predictors: m.Predictors,
			Family:     family,
		})
	}
	return specs
}
