package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain error",
			err:  New(InvalidMolecule, "cannot parse SMILES"),
			want: "cannot parse SMILES",
		},
		{
			name: "wrapped error",
			err:  Wrap(stderrors.New("singular matrix"), ModelFitFailed, "fit failed"),
			want: "fit failed: singular matrix",
		},
		{
			name: "error with fields",
			err: WithFields(New(ModelFitFailed, "fit failed"),
				Fields{"model": "Ridge"}),
			want: "fit failed [model=Ridge]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorCode(t *testing.T) {
	err := Wrap(stderrors.New("boom"), UndefinedMetric, "zero variance")

	var e *Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, UndefinedMetric, e.Code())
	assert.Equal(t, UndefinedMetric, CodeOf(err))

	assert.Equal(t, Unknown, CodeOf(stderrors.New("untyped")))
}

func TestErrorIs(t *testing.T) {
	err := New(RateLimitExceeded, "too many requests")
	assert.True(t, stderrors.Is(err, New(RateLimitExceeded, "other message")))
	assert.False(t, stderrors.Is(err, New(LLMGenerationFailed, "other message")))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ModelFitFailed, "ignored"))
	assert.Nil(t, WithFields(nil, Fields{"k": "v"}))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", New(RateLimitExceeded, "429"), true},
		{"transient", Wrap(stderrors.New("EOF"), LLMTransientFailure, "conn reset"), true},
		{"timeout", New(Timeout, "deadline"), true},
		{"generation failure", New(LLMGenerationFailed, "bad request"), false},
		{"unparseable", New(LLMUnparseableResponse, "no numeric token"), false},
		{"untyped", stderrors.New("whatever"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestCheckContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.NoError(t, CheckContext(ctx, "trial"))

	cancel()
	err := CheckContext(ctx, "trial")
	require.Error(t, err)
	assert.Equal(t, Canceled, CodeOf(err))
}
