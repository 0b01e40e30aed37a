package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Chart     ChartConfig     `yaml:"chart" envconfig:"CHART"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
}

// PipelineConfig contains the stage input/output overrides. Empty values
// fall back to the well-known paths from GetPaths.
type PipelineConfig struct {
	InputFile      string `yaml:"input_file" envconfig:"INPUT_FILE"`
	OutputFile     string `yaml:"output_file" envconfig:"OUTPUT_FILE"`
	BackupPrevious bool   `yaml:"backup_previous" envconfig:"BACKUP_PREVIOUS"`
}

// ChartConfig contains dashboard rendering configuration
type ChartConfig struct {
	Width  int    `yaml:"width" envconfig:"WIDTH" validate:"min=400"`
	Height int    `yaml:"height" envconfig:"HEIGHT" validate:"min=300"`
	Title  string `yaml:"title" envconfig:"TITLE" validate:"required"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	Enabled         bool   `yaml:"enabled" envconfig:"ENABLED"`
	TraceOutput     string `yaml:"trace_output" envconfig:"TRACE_OUTPUT" validate:"oneof=file stdout none"`
	MetricsSnapshot bool   `yaml:"metrics_snapshot" envconfig:"METRICS_SNAPSHOT"`
}

// Load loads configuration from defaults, an optional YAML file and
// SALESPIPE_* environment variables, in increasing order of precedence.
// An empty configFile means the default locations are searched.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Environment variables override file values
	if err := envconfig.Process("SALESPIPE", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays configuration from a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize backfills fields that may arrive empty from a partial file
func (c *Config) normalize() {
	def := Default()

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if c.Logging.Output == "" {
		c.Logging.Output = def.Logging.Output
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = def.Logging.FilePath
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = def.Chart.Width
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = def.Chart.Height
	}
	if c.Chart.Title == "" {
		c.Chart.Title = def.Chart.Title
	}
	if c.Telemetry.TraceOutput == "" {
		c.Telemetry.TraceOutput = def.Telemetry.TraceOutput
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid value for %s: failed %q check", fe.Namespace(), fe.Tag())
		}
		return err
	}
	return nil
}

// ResolveInput returns the raw input path: the configured override when
// set, otherwise the well-known raw data file
func (c *Config) ResolveInput(paths *Paths) string {
	return resolveOverride(c.Pipeline.InputFile, paths, paths.RawDataCSV)
}

// ResolveOutput returns the cleaned output path: the configured override
// when set, otherwise the well-known cleaned data file
func (c *Config) ResolveOutput(paths *Paths) string {
	return resolveOverride(c.Pipeline.OutputFile, paths, paths.CleanedDataCSV)
}

func resolveOverride(configured string, paths *Paths, fallback string) string {
	if configured == "" {
		return fallback
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return paths.GetRelativePath(configured)
}

// findConfigFile returns the path to the config file, if one exists
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	if paths, err := GetPaths(); err == nil {
		locations = append(locations, paths.GetRelativePath("config.yaml"))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use defaults and env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFilePath,
		},
		Pipeline: PipelineConfig{
			BackupPrevious: true,
		},
		Chart: ChartConfig{
			Width:  DefaultChartWidth,
			Height: DefaultChartHeight,
			Title:  DefaultChartTitle,
		},
		Telemetry: TelemetryConfig{
			Enabled:         true,
			TraceOutput:     "file",
			MetricsSnapshot: true,
		},
	}
}
