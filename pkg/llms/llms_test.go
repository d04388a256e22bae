package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chembench/molprop/pkg/config"
	"github.com/chembench/molprop/pkg/core"
	"github.com/chembench/molprop/pkg/errors"
	"github.com/chembench/molprop/pkg/llms/openai"
)

func openAIServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenAILLM) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	llm, err := NewOpenAILLM(core.ModelOpenAIGPT4o,
		WithAPIKey("test-key"),
		WithBaseURL(server.URL))
	require.NoError(t, err)
	return server, llm
}

func TestOpenAIGenerate(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	_, llm := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-4o",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "approximately 46.07"}},
			},
			Usage: openai.Usage{PromptTokens: 100, CompletionTokens: 8, TotalTokens: 108},
		}
		json.NewEncoder(w).Encode(resp)
	})

	resp, err := llm.Generate(context.Background(), "predict the property")
	require.NoError(t, err)
	assert.Equal(t, "approximately 46.07", resp.Content)
	assert.Equal(t, 108, resp.Usage.TotalTokens)

	// Deterministic sampling settings go out on every request.
	require.NotNil(t, gotReq.Temperature)
	assert.Equal(t, 0.0, *gotReq.Temperature)
	require.NotNil(t, gotReq.TopP)
	assert.Equal(t, 1.0, *gotReq.TopP)
	require.NotNil(t, gotReq.MaxTokens)
	assert.Equal(t, 1000, *gotReq.MaxTokens)
	assert.Equal(t, "gpt-4o", gotReq.Model)
}

func TestOpenAIRateLimit(t *testing.T) {
	_, llm := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(openai.ErrorResponse{
			Error: openai.APIError{Message: "rate limit reached", Type: "rate_limit_error"},
		})
	})

	_, err := llm.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, errors.RateLimitExceeded, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestOpenAIServerError(t *testing.T) {
	_, llm := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := llm.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, errors.LLMTransientFailure, errors.CodeOf(err))
}

func TestOpenAIBadRequestNotRetryable(t *testing.T) {
	_, llm := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(openai.ErrorResponse{
			Error: openai.APIError{Message: "invalid model", Type: "invalid_request_error"},
		})
	})

	_, err := llm.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, errors.LLMGenerationFailed, errors.CodeOf(err))
	assert.False(t, errors.IsRetryable(err))
}

func TestOpenAINoChoices(t *testing.T) {
	_, llm := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	})

	_, err := llm.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, errors.InvalidResponse, errors.CodeOf(err))
}

func TestOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAILLM(core.ModelOpenAIGPT4o)
	require.Error(t, err)
	assert.Equal(t, errors.ConfigurationError, errors.CodeOf(err))
}

func TestAnthropicRequiresKey(t *testing.T) {
	_, err := NewAnthropicLLM(core.ModelAnthropicSonnet, "", "", 0)
	require.Error(t, err)
	assert.Equal(t, errors.ConfigurationError, errors.CodeOf(err))
}

func TestFactory(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Providers["openai"] = config.ProviderConfig{ModelID: "gpt-4o", APIKey: "k"}

	llm, err := New(cfg, "openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", llm.ProviderName())

	_, err = New(cfg, "mistral")
	require.Error(t, err)
	assert.Equal(t, errors.ConfigurationError, errors.CodeOf(err))
}
