package testutil

import (
	"context"

	"github.com/chembench/molprop/pkg/core"
	"github.com/stretchr/testify/mock"
)

// MockLLM is a mock implementation of core.LLM.
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, opts ...core.GenerateOption) (*core.LLMResponse, error) {
	args := m.Called(ctx, prompt, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.LLMResponse), args.Error(1)
}

func (m *MockLLM) ProviderName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockLLM) ModelID() string {
	args := m.Called()
	return args.String(0)
}
