package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/chembench/molprop/internal/testutil"
	"github.com/chembench/molprop/pkg/core"
	"github.com/chembench/molprop/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(retries int) core.RetryConfig {
	return core.RetryConfig{
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestRetryDecorator_SucceedsFirstAttempt(t *testing.T) {
	mockLLM := new(testutil.MockLLM)
	mockLLM.On("Generate", mock.Anything, "prompt", mock.Anything).
		Return(&core.LLMResponse{Content: "3.14"}, nil).Once()

	d := core.NewRetryDecorator(mockLLM, fastRetryConfig(3))
	resp, err := d.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "3.14", resp.Content)
	mockLLM.AssertExpectations(t)
}

func TestRetryDecorator_RetriesRateLimit(t *testing.T) {
	mockLLM := new(testutil.MockLLM)
	mockLLM.On("ProviderName").Return("openai").Maybe()
	mockLLM.On("Generate", mock.Anything, "prompt", mock.Anything).
		Return(nil, errors.New(errors.RateLimitExceeded, "429")).Twice()
	mockLLM.On("Generate", mock.Anything, "prompt", mock.Anything).
		Return(&core.LLMResponse{Content: "ok"}, nil).Once()

	d := core.NewRetryDecorator(mockLLM, fastRetryConfig(3))
	resp, err := d.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	mockLLM.AssertExpectations(t)
}

func TestRetryDecorator_NonRetryableSurfacesImmediately(t *testing.T) {
	mockLLM := new(testutil.MockLLM)
	mockLLM.On("Generate", mock.Anything, "prompt", mock.Anything).
		Return(nil, errors.New(errors.LLMGenerationFailed, "bad request")).Once()

	d := core.NewRetryDecorator(mockLLM, fastRetryConfig(3))
	_, err := d.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.Equal(t, errors.LLMGenerationFailed, errors.CodeOf(err))
	mockLLM.AssertExpectations(t)
}

func TestRetryDecorator_ExhaustsRetries(t *testing.T) {
	mockLLM := new(testutil.MockLLM)
	mockLLM.On("ProviderName").Return("anthropic").Maybe()
	mockLLM.On("Generate", mock.Anything, "prompt", mock.Anything).
		Return(nil, errors.New(errors.LLMTransientFailure, "connection reset")).Times(3)

	d := core.NewRetryDecorator(mockLLM, fastRetryConfig(2))
	_, err := d.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.Equal(t, errors.LLMTransientFailure, errors.CodeOf(err))
	mockLLM.AssertExpectations(t)
}

func TestGenerateOptionsDefaults(t *testing.T) {
	opts := core.NewGenerateOptions()
	assert.Equal(t, 1000, opts.MaxTokens)
	assert.Equal(t, 0.0, opts.Temperature)
	assert.Equal(t, 1.0, opts.TopP)

	core.WithMaxTokens(256)(opts)
	core.WithTemperature(0.7)(opts)
	assert.Equal(t, 256, opts.MaxTokens)
	assert.Equal(t, 0.7, opts.Temperature)
}
