package prompt

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	examples := []Example{
		{SMILES: "CCO", Value: 46.069},
		{SMILES: "c1ccccc1", Value: 78.11},
	}
	p, err := Build(NoHint, "CC(=O)O", examples)
	require.NoError(t, err)

	assert.Contains(t, p, "experienced chemist")
	assert.Contains(t, p, "CCO, 46.069")
	assert.Contains(t, p, "c1ccccc1, 78.11")
	assert.Contains(t, p, "CC(=O)O")
	assert.True(t, strings.HasSuffix(p, "property value!"))
	// The weakest hint never names the property or the format.
	assert.NotContains(t, p, "molecular weight")
	assert.NotContains(t, p, "SMILES")
}

func TestBuildHintLevels(t *testing.T) {
	examples := []Example{{SMILES: "CCO", Value: 1}}

	p, err := Build(AllHint, "C", examples)
	require.NoError(t, err)
	assert.Contains(t, p, "molecular weight")
	assert.Contains(t, p, "SMILES format")

	p, err = Build(LinearHint, "C", examples)
	require.NoError(t, err)
	assert.Contains(t, p, "a * M.W. + b")

	p, err = Build(FunctionHint, "C", examples)
	require.NoError(t, err)
	assert.Contains(t, p, "f(M.W.)")

	_, err = Build(Hint("bogus"), "C", examples)
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "46.069", formatValue(46.069))
	assert.Equal(t, "78", formatValue(78.0))
	assert.Equal(t, "-0.31", formatValue(-0.31))
	assert.Equal(t, "0.00000001", formatValue(1e-8))
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		response string
		want     float64
		ok       bool
	}{
		{"2.35", 2.35, true},
		{"The predicted value is approximately 2.35 g/mol.", 2.35, true},
		{"Answer: -17.5", -17.5, true},
		{"Roughly 120", 120, true},
		{"I cannot determine the value.", 0, false},
		{"", 0, false},
		{"First 3.1 then 4.2", 3.1, true},
	}
	for _, tt := range tests {
		got, ok := ExtractNumber(tt.response)
		assert.Equal(t, tt.ok, ok, tt.response)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.response)
		}
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpt", "run.txt")
	w, err := NewTranscriptWriter(path)
	require.NoError(t, err)

	entries := []Entry{
		{Iteration: 1, SMILES: "CCO", TrueValue: 46.069, Response: "The value is approximately 46.1 g/mol."},
		{Iteration: 2, SMILES: "c1ccccc1", TrueValue: 78.11, Response: "78\nwith some explanation\nover lines"},
		{Iteration: 3, SMILES: "CC", TrueValue: 30.07, Response: "Error: rate limited"},
	}
	for _, e := range entries {
		require.NoError(t, w.Append(e))
	}
	require.NoError(t, w.Close())

	got, err := ReadTranscriptFile(path)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, entries, got)
}

func TestReadTranscriptTruncatedBlock(t *testing.T) {
	raw := "Iteration: 1\nSMILES: CCO\nTrue Property: 46.069\nPredicted Property:\n46\n" +
		"==================================================\n" +
		"Iteration: 2\nSMILES: CC\n" // cut off mid-block
	got, err := ReadTranscript(bytes.NewReader([]byte(raw)))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 46.069, got[0].TrueValue)
	assert.Equal(t, "CC", got[1].SMILES)
}

func TestTranscriptValueFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.txt")
	w, err := NewTranscriptWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(Entry{Iteration: 1, SMILES: "C", TrueValue: 16.043, Response: "16"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "True Property: 16.043\n")
}
