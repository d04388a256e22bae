// Package llms provides the language model clients used by the in-context
// learning experiments: a plain HTTP client for the OpenAI chat API and the
// official SDK for Anthropic, both behind the core.LLM interface.
package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/chembench/molprop/pkg/core"
	"github.com/chembench/molprop/pkg/errors"
	"github.com/chembench/molprop/pkg/llms/openai"
)

// OpenAILLM talks to the chat completions endpoint over plain HTTP.
type OpenAILLM struct {
	*core.BaseLLM
}

// OpenAIOption configures the client at construction.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	apiKey  string
	baseURL string
	path    string
	timeout time.Duration
	headers map[string]string
}

// WithAPIKey sets the bearer token.
func WithAPIKey(apiKey string) OpenAIOption {
	return func(c *openAIConfig) { c.apiKey = apiKey }
}

// WithBaseURL redirects requests, e.g. to a proxy or a test server.
func WithBaseURL(baseURL string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = baseURL }
}

// WithTimeout bounds each HTTP request.
func WithTimeout(timeout time.Duration) OpenAIOption {
	return func(c *openAIConfig) { c.timeout = timeout }
}

// WithHeader adds a custom header to every request.
func WithHeader(key, value string) OpenAIOption {
	return func(c *openAIConfig) {
		if c.headers == nil {
			c.headers = map[string]string{}
		}
		c.headers[key] = value
	}
}

// NewOpenAILLM builds the client. An API key is required.
func NewOpenAILLM(modelID core.ModelID, opts ...OpenAIOption) (*OpenAILLM, error) {
	cfg := &openAIConfig{
		baseURL: "https://api.openai.com",
		path:    "/v1/chat/completions",
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.apiKey == "" {
		return nil, errors.New(errors.ConfigurationError, "OpenAI API key is required")
	}

	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + cfg.apiKey,
	}
	for k, v := range cfg.headers {
		headers[k] = v
	}

	endpoint := &core.EndpointConfig{
		BaseURL:    cfg.baseURL,
		Path:       cfg.path,
		Headers:    headers,
		TimeoutSec: int(cfg.timeout / time.Second),
	}
	return &OpenAILLM{BaseLLM: core.NewBaseLLM("openai", modelID, endpoint)}, nil
}

// Generate implements core.LLM.
func (o *OpenAILLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	request := &openai.ChatCompletionRequest{
		Model: o.ModelID(),
		Messages: []openai.ChatCompletionMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   &opts.MaxTokens,
		Temperature: &opts.Temperature,
		TopP:        &opts.TopP,
	}

	response, err := o.makeRequest(ctx, request)
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, errors.New(errors.InvalidResponse, "no choices returned from OpenAI API")
	}

	return &core.LLMResponse{
		Content: response.Choices[0].Message.Content,
		Usage: &core.TokenInfo{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		},
	}, nil
}

func (o *OpenAILLM) makeRequest(ctx context.Context, request *openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to marshal request")
	}

	endpoint := o.GetEndpointConfig()
	url := endpoint.BaseURL + endpoint.Path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to create request")
	}
	for key, value := range endpoint.Headers {
		req.Header.Set(key, value)
	}

	resp, err := o.GetHTTPClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.Canceled, "request canceled")
		}
		return nil, errors.Wrap(err, errors.LLMTransientFailure, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.LLMTransientFailure, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, openAIStatusError(resp.StatusCode, body)
	}

	var response openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "failed to parse response")
	}
	return &response, nil
}

// openAIStatusError classifies non-200 responses so the retry layer can tell
// transient failures from permanent ones.
func openAIStatusError(status int, body []byte) error {
	code := errors.LLMGenerationFailed
	switch {
	case status == http.StatusTooManyRequests:
		code = errors.RateLimitExceeded
	case status >= 500:
		code = errors.LLMTransientFailure
	}

	var errorResp openai.ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error.Message == "" {
		return errors.WithFields(
			errors.New(code, "API request failed"),
			errors.Fields{"status": status, "body": string(body)})
	}
	return errors.WithFields(
		errors.New(code, errorResp.Error.Message),
		errors.Fields{"status": status, "type": errorResp.Error.Type})
}
