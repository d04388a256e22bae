package core

import (
	"context"
	"time"

	"github.com/chembench/molprop/pkg/errors"
	"github.com/chembench/molprop/pkg/logging"
)

// BaseDecorator provides common functionality for all LLM decorators.
type BaseDecorator struct {
	LLM
}

func (d *BaseDecorator) Unwrap() LLM {
	return d.LLM
}

// RetryConfig controls retry behavior for transient provider failures.
type RetryConfig struct {
	MaxRetries     int           // Attempts after the first failure
	InitialBackoff time.Duration // Backoff before the first retry
	MaxBackoff     time.Duration // Upper bound for the backoff growth
}

// DefaultRetryConfig matches the per-request budget used for the published
// runs: three retries, exponential backoff starting at one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

// RetryDecorator retries Generate on rate-limit and transient network
// failures. Non-retryable failures surface immediately.
type RetryDecorator struct {
	BaseDecorator
	config RetryConfig
}

func NewRetryDecorator(base LLM, config RetryConfig) *RetryDecorator {
	return &RetryDecorator{
		BaseDecorator: BaseDecorator{LLM: base},
		config:        config,
	}
}

func (d *RetryDecorator) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*LLMResponse, error) {
	logger := logging.GetLogger()

	var lastErr error
	backoff := d.config.InitialBackoff

	for attempt := 0; attempt <= d.config.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Warn(ctx, "retrying %s request (attempt %d/%d) after %v: %v",
				d.ProviderName(), attempt, d.config.MaxRetries, backoff, lastErr)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), errors.Canceled, "generation canceled during backoff")
			}

			backoff *= 2
			if d.config.MaxBackoff > 0 && backoff > d.config.MaxBackoff {
				backoff = d.config.MaxBackoff
			}
		}

		resp, err := d.LLM.Generate(ctx, prompt, options...)
		if err == nil {
			return resp, nil
		}
		if !errors.IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, errors.WithFields(
		errors.Wrap(lastErr, errors.LLMTransientFailure, "retries exhausted"),
		errors.Fields{"max_retries": d.config.MaxRetries})
}

// Chain composes multiple decorators around a base LLM.
func Chain(base LLM, decorators ...func(LLM) LLM) LLM {
	result := base
	for _, d := range decorators {
		result = d(result)
	}
	return result
}
