package llms

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/chembench/molprop/pkg/core"
	"github.com/chembench/molprop/pkg/errors"
	"github.com/chembench/molprop/pkg/logging"
)

// AnthropicLLM wraps the official SDK behind core.LLM.
type AnthropicLLM struct {
	client *anthropic.Client
	*core.BaseLLM
}

// NewAnthropicLLM builds the client. An API key is required; baseURL is
// optional and mainly useful for tests.
func NewAnthropicLLM(modelID core.ModelID, apiKey, baseURL string, timeout time.Duration) (*AnthropicLLM, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ConfigurationError, "Anthropic API key is required")
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(timeout))
	}
	client := anthropic.NewClient(clientOpts...)

	return &AnthropicLLM{
		client:  &client,
		BaseLLM: core.NewBaseLLM("anthropic", modelID, nil),
	}, nil
}

// Generate implements core.LLM.
func (a *AnthropicLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (*core.LLMResponse, error) {
	logger := logging.GetLogger()
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: anthropic.Model(a.ModelID()),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: anthropic.Float(opts.Temperature),
		TopP:        anthropic.Float(opts.TopP),
	})
	if err != nil {
		return nil, a.classifyError(ctx, err, opts)
	}
	if message == nil || len(message.Content) == 0 {
		return nil, errors.New(errors.LLMGenerationFailed, "received empty content from Anthropic API")
	}

	var responseText string
	if block := message.Content[0]; block.Type == "text" {
		responseText = block.Text
	}

	logger.Debug(ctx, "anthropic response: %d prompt tokens, %d completion tokens",
		message.Usage.InputTokens, message.Usage.OutputTokens)

	return &core.LLMResponse{
		Content: responseText,
		Usage: &core.TokenInfo{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

func (a *AnthropicLLM) classifyError(ctx context.Context, err error, opts *core.GenerateOptions) error {
	logger := logging.GetLogger()

	code := errors.LLMGenerationFailed
	var apiErr *anthropic.Error
	if stderrors.As(err, &apiErr) {
		logger.Error(ctx, "anthropic API error: status %d", apiErr.StatusCode)
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			code = errors.RateLimitExceeded
		case apiErr.StatusCode >= 500:
			code = errors.LLMTransientFailure
		}
	}
	return errors.WithFields(
		errors.Wrap(err, code, "failed to generate response"),
		errors.Fields{
			"model":      a.ModelID(),
			"max_tokens": opts.MaxTokens,
		})
}
