package config

import "time"

// Default returns the configuration matching the published experiments:
// 100 trials of 50 train / 1 test, all nine tasks, all representations,
// gpt-4o and claude-3-5-sonnet with greedy decoding.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Path:         "delaney-processed.csv",
			SMILESColumn: "smiles",
		},
		Experiment: ExperimentConfig{
			Trials:    100,
			TrainSize: 50,
			TestSize:  1,
		},
		LLM: LLMConfig{
			Enabled: true,
			Providers: map[string]ProviderConfig{
				"openai":    {ModelID: "gpt-4o", Timeout: 60 * time.Second},
				"anthropic": {ModelID: "claude-3-5-sonnet-20241022", Timeout: 60 * time.Second},
			},
			Hint:        "no_hint",
			MaxTokens:   1000,
			Temperature: 0,
			TopP:        1,
			Retry: RetryConfig{
				MaxRetries:     3,
				InitialBackoff: time.Second,
				MaxBackoff:     30 * time.Second,
			},
		},
		Output: OutputConfig{
			ResultsDir: "Results",
			ResponseDirs: map[string]string{
				"openai":    "GPT_Response",
				"anthropic": "Claude_Response",
			},
		},
		Logging: LoggingConfig{Level: "INFO"},
	}
}
