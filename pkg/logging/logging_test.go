package logging

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferOutput struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *bufferOutput) Write(e LogEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.WriteString(e.Message)
	if e.Task != "" {
		b.buf.WriteString(" task=" + e.Task)
	}
	b.buf.WriteString("\n")
	return nil
}

func (b *bufferOutput) Sync() error  { return nil }
func (b *bufferOutput) Close() error { return nil }

func (b *bufferOutput) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSeverityFiltering(t *testing.T) {
	out := &bufferOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{out}})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	got := out.String()
	assert.NotContains(t, got, "debug message")
	assert.NotContains(t, got, "info message")
	assert.Contains(t, got, "warn message")
	assert.Contains(t, got, "error message")
}

func TestScopePropagation(t *testing.T) {
	out := &bufferOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	ctx := WithScope(context.Background(), Scope{Task: "logp", Representation: "ecfp", Trial: 7})
	logger.Info(ctx, "fitting models")

	assert.Contains(t, out.String(), "task=logp")
}

func TestGetScopeMissing(t *testing.T) {
	_, ok := GetScope(context.Background())
	assert.False(t, ok)
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, ERROR, ParseSeverity("ERROR"))
	assert.Equal(t, INFO, ParseSeverity("bogus"))
}

func TestConsoleOutputWrite(t *testing.T) {
	var buf bytes.Buffer
	out := &ConsoleOutput{writer: &buf, color: false}

	err := out.Write(LogEntry{
		Severity: INFO,
		Message:  "trial complete",
		File:     "runner.go",
		Line:     42,
		Task:     "mw",
		Trial:    3,
	})
	require.NoError(t, err)

	line := buf.String()
	assert.True(t, strings.Contains(line, "trial complete"))
	assert.True(t, strings.Contains(line, "[task=mw]"))
	assert.True(t, strings.Contains(line, "[trial=3]"))
}
