// Package config defines the immutable experiment configuration. A single
// Config is built at startup (defaults, optional YAML file, flags) and passed
// into the trial runner and LLM clients at construction time; nothing reads
// global mutable state afterwards.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/chembench/molprop/pkg/errors"
)

// Config is the complete configuration for an experiment run.
type Config struct {
	Dataset    DatasetConfig    `yaml:"dataset" validate:"required"`
	Experiment ExperimentConfig `yaml:"experiment" validate:"required"`
	LLM        LLMConfig        `yaml:"llm,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
}

// DatasetConfig locates the molecules table.
type DatasetConfig struct {
	// Path to a CSV or Parquet file with a SMILES column and one numeric
	// column per target property.
	Path string `yaml:"path" validate:"required"`

	// SMILESColumn names the column holding SMILES strings.
	SMILESColumn string `yaml:"smiles_column" validate:"required"`
}

// ExperimentConfig controls the trial loop.
type ExperimentConfig struct {
	// Trials is the number of repeated random splits per task.
	Trials int `yaml:"trials" validate:"min=1"`

	// TrainSize molecules are sampled for in-context examples and model
	// fitting; TestSize disjoint molecules are held out per trial.
	TrainSize int `yaml:"train_size" validate:"min=1"`
	TestSize  int `yaml:"test_size" validate:"min=1"`

	// Tasks filters the task table by key; empty means all nine tasks.
	Tasks []string `yaml:"tasks,omitempty"`

	// Representations filters the feature representations; empty means all.
	Representations []string `yaml:"representations,omitempty"`
}

// LLMConfig controls the in-context-learning side of the comparison.
type LLMConfig struct {
	// Enabled switches the LLM experiments on. The full experiment runs them
	// by default; the run command's --ml-only flag and this setting both opt
	// out.
	Enabled bool `yaml:"enabled"`

	// Providers maps a provider name (openai, anthropic) to its settings.
	Providers map[string]ProviderConfig `yaml:"providers,omitempty" validate:"omitempty,dive"`

	// Hint selects the prompt template variant.
	Hint string `yaml:"hint,omitempty" validate:"omitempty,oneof=no_hint label_hint smiles_hint function_hint linear_hint all_hint"`

	MaxTokens   int     `yaml:"max_tokens" validate:"min=1"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`

	Retry RetryConfig `yaml:"retry,omitempty"`
}

// ProviderConfig holds per-provider credentials and endpoint overrides.
type ProviderConfig struct {
	ModelID string `yaml:"model_id" validate:"required"`

	// APIKey may be left empty and supplied via environment variable
	// (OPENAI_API_KEY, ANTHROPIC_API_KEY).
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint, for proxies and tests.
	BaseURL string `yaml:"base_url,omitempty"`

	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// RetryConfig mirrors core.RetryConfig for YAML surface.
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries" validate:"min=0"`
	InitialBackoff time.Duration `yaml:"initial_backoff" validate:"min=0"`
	MaxBackoff     time.Duration `yaml:"max_backoff" validate:"min=0"`
}

// OutputConfig names the artifact locations.
type OutputConfig struct {
	// ResultsDir receives the raw-record store, summary CSVs and plots.
	ResultsDir string `yaml:"results_dir" validate:"required"`

	// ResponseDirs maps a provider name to the directory receiving its raw
	// transcript files, one file per task.
	ResponseDirs map[string]string `yaml:"response_dirs,omitempty"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ConfigurationError, "cannot read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.ConfigurationError, "cannot parse config file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints and the cross-field rules that
// validator tags cannot express.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return errors.Wrap(err, errors.ConfigurationError, "invalid configuration")
	}

	for _, key := range c.Experiment.Tasks {
		if _, ok := TaskByKey(key); !ok {
			return errors.WithFields(
				errors.New(errors.ConfigurationError, "unknown task"),
				errors.Fields{"task": key})
		}
	}

	if c.LLM.Enabled && len(c.LLM.Providers) == 0 {
		return errors.New(errors.ConfigurationError, "LLM mode requested but no providers configured")
	}

	return nil
}

// ResolveAPIKey returns the provider API key, falling back to the
// conventional environment variable. LLM mode without a key is a fatal
// configuration error, reported before any trial work begins.
func (c *Config) ResolveAPIKey(provider string) (string, error) {
	p, ok := c.LLM.Providers[provider]
	if ok && p.APIKey != "" {
		return p.APIKey, nil
	}

	var envVar string
	switch provider {
	case "openai":
		envVar = "OPENAI_API_KEY"
	case "anthropic":
		envVar = "ANTHROPIC_API_KEY"
	default:
		return "", errors.WithFields(
			errors.New(errors.ConfigurationError, "unknown provider"),
			errors.Fields{"provider": provider})
	}

	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", errors.WithFields(
		errors.New(errors.ConfigurationError, "missing API credential"),
		errors.Fields{"provider": provider, "env_var": envVar})
}
