package llms

import (
	"github.com/chembench/molprop/pkg/config"
	"github.com/chembench/molprop/pkg/core"
	"github.com/chembench/molprop/pkg/errors"
)

// New builds the client for a configured provider, wrapped with the retry
// decorator from the run configuration.
func New(cfg *config.Config, provider string) (core.LLM, error) {
	pc, ok := cfg.LLM.Providers[provider]
	if !ok {
		return nil, errors.WithFields(
			errors.New(errors.ConfigurationError, "provider not configured"),
			errors.Fields{"provider": provider})
	}

	apiKey, err := cfg.ResolveAPIKey(provider)
	if err != nil {
		return nil, err
	}

	var llm core.LLM
	switch provider {
	case "openai":
		opts := []OpenAIOption{WithAPIKey(apiKey), WithTimeout(pc.Timeout)}
		if pc.BaseURL != "" {
			opts = append(opts, WithBaseURL(pc.BaseURL))
		}
		llm, err = NewOpenAILLM(core.ModelID(pc.ModelID), opts...)
	case "anthropic":
		llm, err = NewAnthropicLLM(core.ModelID(pc.ModelID), apiKey, pc.BaseURL, pc.Timeout)
	default:
		return nil, errors.WithFields(
			errors.New(errors.ConfigurationError, "unknown provider"),
			errors.Fields{"provider": provider})
	}
	if err != nil {
		return nil, err
	}

	return core.NewRetryDecorator(llm, core.RetryConfig{
		MaxRetries:     cfg.LLM.Retry.MaxRetries,
		InitialBackoff: cfg.LLM.Retry.InitialBackoff,
		MaxBackoff:     cfg.LLM.Retry.MaxBackoff,
	}), nil
}
