package core

import (
	"context"
	"net/http"
	"time"
)

// TokenInfo reports token usage for a single generation request.
type TokenInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LLMResponse is the raw text reply from a provider, plus usage metadata.
type LLMResponse struct {
	Content  string
	Usage    *TokenInfo
	Metadata map[string]interface{}
}

// ModelID identifies a provider model.
type ModelID string

const (
	// Models used by the published experiments.
	ModelOpenAIGPT4o     ModelID = "gpt-4o"
	ModelOpenAIGPT4oMini ModelID = "gpt-4o-mini"
	ModelAnthropicSonnet ModelID = "claude-3-5-sonnet-20241022"
	ModelAnthropicHaiku  ModelID = "claude-3-5-haiku-20241022"
)

// LLM is the minimal surface the experiment needs from a provider: a
// deterministic prompt in, free text out. Providers handle their own wire
// format.
type LLM interface {
	// Generate produces a text completion for the given prompt.
	Generate(ctx context.Context, prompt string, options ...GenerateOption) (*LLMResponse, error)

	ProviderName() string
	ModelID() string
}

// GenerateOption represents an option for text generation.
type GenerateOption func(*GenerateOptions)

// GenerateOptions holds configuration for text generation.
type GenerateOptions struct {
	MaxTokens        int
	Temperature      float64
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
	Stop             []string
}

// NewGenerateOptions creates GenerateOptions with the defaults the reference
// experiments used: greedy decoding, bounded output.
func NewGenerateOptions() *GenerateOptions {
	return &GenerateOptions{
		MaxTokens:   1000,
		Temperature: 0,
		TopP:        1,
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = t
	}
}

// WithTopP sets the nucleus sampling probability.
func WithTopP(p float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.TopP = p
	}
}

// WithPresencePenalty sets the presence penalty.
func WithPresencePenalty(p float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.PresencePenalty = p
	}
}

// WithFrequencyPenalty sets the frequency penalty.
func WithFrequencyPenalty(p float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.FrequencyPenalty = p
	}
}

// WithStopSequences sets the stop sequences.
func WithStopSequences(sequences ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Stop = sequences
	}
}

// EndpointConfig describes where and how to reach an HTTP provider.
type EndpointConfig struct {
	BaseURL    string            // Base API URL
	Path       string            // Specific endpoint path
	Headers    map[string]string // Common headers
	TimeoutSec int               // Request timeout in seconds
}

// BaseLLM provides the shared plumbing for provider implementations.
type BaseLLM struct {
	providerName string
	modelID      ModelID

	endpoint *EndpointConfig // Optional endpoint configuration
	client   *http.Client    // Common HTTP client
}

// ProviderName implements LLM interface.
func (b *BaseLLM) ProviderName() string {
	return b.providerName
}

// ModelID implements LLM interface.
func (b *BaseLLM) ModelID() string {
	return string(b.modelID)
}

// GetEndpointConfig returns the endpoint configuration, possibly nil.
func (b *BaseLLM) GetEndpointConfig() *EndpointConfig {
	return b.endpoint
}

// GetHTTPClient returns the shared HTTP client.
func (b *BaseLLM) GetHTTPClient() *http.Client {
	return b.client
}

func NewBaseLLM(providerName string, modelID ModelID, endpoint *EndpointConfig) *BaseLLM {
	timeout := 60 * time.Second
	if endpoint != nil && endpoint.TimeoutSec > 0 {
		timeout = time.Duration(endpoint.TimeoutSec) * time.Second
	}

	return &BaseLLM{
		providerName: providerName,
		modelID:      modelID,
		endpoint:     endpoint,
		client:       &http.Client{Timeout: timeout},
	}
}
