package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "perfmerge/internal/errors"
	"perfmerge/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable, e.g. PERFMERGE_LOGGING_LEVEL.
const EnvPrefix = "PERFMERGE"

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains the input and output locations of a run
type PathsConfig struct {
	InputDir     string `yaml:"input_dir" envconfig:"INPUT_DIR"`
	Pattern      string `yaml:"pattern" envconfig:"PATTERN"` // glob within InputDir, e.g. "*.xlsx"
	OutputFile   string `yaml:"output_file" envconfig:"OUTPUT_FILE" validate:"omitempty,endswith=.xlsx"`
	FilterOutput string `yaml:"filter_output" envconfig:"FILTER_OUTPUT" validate:"omitempty,endswith=.csv"`
	FilterBOM    bool   `yaml:"filter_bom" envconfig:"FILTER_BOM"`
	MetricsFile  string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// PipelineConfig selects what a consolidation run derives and renders
type PipelineConfig struct {
	IncludeVariance bool                  `yaml:"include_variance" envconfig:"INCLUDE_VARIANCE"`
	VarianceMode    string                `yaml:"variance_mode" envconfig:"VARIANCE_MODE" validate:"oneof=absolute relative-percent"`
	Pairs           string                `yaml:"pairs" envconfig:"PAIRS" validate:"oneof=none latest consecutive latest+consecutive"`
	ExplicitPairs   []domain.VariancePair `yaml:"explicit_pairs" ignored:"true" validate:"dive"`
	ChartOutput     string                `yaml:"chart_output" envconfig:"CHART_OUTPUT" validate:"oneof=none embedded-image native-chart"`
	SheetLayout     string                `yaml:"sheet_layout" envconfig:"SHEET_LAYOUT" validate:"oneof=single multi"`
	Arrows          bool                  `yaml:"arrows" envconfig:"ARROWS"`
	Concurrency     int                   `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"min=1,max=64"`
	WarnThreshold   float64               `yaml:"warn_threshold" envconfig:"WARN_THRESHOLD" validate:"gt=0"`
	SevereThreshold float64               `yaml:"severe_threshold" envconfig:"SEVERE_THRESHOLD" validate:"gtfield=WarnThreshold"`
}

// Load builds the configuration in three layers: defaults, then the YAML
// file at path (if path is non-empty), then PERFMERGE_* environment
// variables. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config from %s", path), err)
		}
	}

	// Unset variables leave the file and default values in place.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	c.Pipeline.VarianceMode = strings.ToLower(strings.TrimSpace(c.Pipeline.VarianceMode))
	c.Pipeline.Pairs = strings.ToLower(strings.TrimSpace(c.Pipeline.Pairs))
	c.Pipeline.ChartOutput = strings.ToLower(strings.TrimSpace(c.Pipeline.ChartOutput))
	c.Pipeline.SheetLayout = strings.ToLower(strings.TrimSpace(c.Pipeline.SheetLayout))
}

var validate = validator.New()

// Validate checks every section against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
		return apperrors.NewConfigError("config validation failed: "+strings.Join(msgs, "; "), err)
	}
	return nil
}

// ToPipelineOptions converts the pipeline section into the options the
// consolidation service runs with.
func (c *Config) ToPipelineOptions() domain.PipelineOptions {
	p := c.Pipeline
	opts := domain.PipelineOptions{
		IncludeVariance: p.IncludeVariance,
		VarianceMode:    domain.VarianceMode(p.VarianceMode),
		PairPreset:      domain.PairPreset(p.Pairs),
		ChartOutput:     domain.ChartOutput(p.ChartOutput),
		SheetLayout:     domain.SheetLayout(p.SheetLayout),
		Arrows:          p.Arrows,
	}
	if len(p.ExplicitPairs) > 0 {
		opts.Pairs = append([]domain.VariancePair(nil), p.ExplicitPairs...)
	}
	return opts
}

// Default returns default configuration
func Default() *Config {
	opts := domain.DefaultPipelineOptions()
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			InputDir:     ".",
			OutputFile:   DefaultOutputFile,
			FilterOutput: DefaultFilterOutput,
		},
		Pipeline: PipelineConfig{
			IncludeVariance: opts.IncludeVariance,
			VarianceMode:    string(opts.VarianceMode),
			Pairs:           string(opts.PairPreset),
			ChartOutput:     string(opts.ChartOutput),
			SheetLayout:     string(opts.SheetLayout),
			Arrows:          opts.Arrows,
			Concurrency:     DefaultReadConcurrency,
			WarnThreshold:   DefaultWarnThreshold,
			SevereThreshold: DefaultSevereThreshold,
		},
	}
}
