// Package prompt assembles the in-context learning prompts sent to the
// language models, parses numeric answers out of free-text replies, and
// records full transcripts of every exchange.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chembench/molprop/pkg/errors"
)

// Hint selects how much the prompt reveals about the target property.
type Hint string

const (
	// NoHint names neither the property nor the input format.
	NoHint Hint = "no_hint"
	// LabelHint names the property (molecular weight) but not the format.
	LabelHint Hint = "label_hint"
	// SMILESHint names the input format but not the property.
	SMILESHint Hint = "smiles_hint"
	// FunctionHint says the property is some function of molecular weight.
	FunctionHint Hint = "function_hint"
	// LinearHint says the property is a linear function a*M.W.+b.
	LinearHint Hint = "linear_hint"
	// AllHint names both the property and the input format.
	AllHint Hint = "all_hint"
)

// Hints lists every hint level, weakest first.
func Hints() []Hint {
	return []Hint{NoHint, LabelHint, SMILESHint, FunctionHint, LinearHint, AllHint}
}

// Example is one labeled molecule shown to the model.
type Example struct {
	SMILES string
	Value  float64
}

const preamble = "You are an experienced chemist with expertise in molecular structures. " +
	"Using only your knowledge and without employing any external tools or code, "

type template struct {
	subject  string // what to predict, e.g. "the property"
	examples string // how the example block is introduced
	query    string // how the target molecule is introduced
	closing  string // final instruction
}

var templates = map[Hint]template{
	NoHint: {
		subject:  "predict the property for the following molecules.",
		examples: "Below are examples of molecules and known property value:",
		query:    "Now, based on these examples, predict the property for the following molecule:",
		closing:  "Please provide the predicted specific property value!",
	},
	LabelHint: {
		subject:  "predict the molecular weight for the following molecules.",
		examples: "Below are examples of molecules and known molecular weights:",
		query:    "Now, based on these examples, predict the molecular weight for the following molecule:",
		closing:  "Please provide the predicted specific molecular weight value!",
	},
	SMILESHint: {
		subject:  "predict the property for the following molecules.",
		examples: "Below are examples of molecules in SMILES format and known property value:",
		query:    "Now, based on these examples, predict the property for the following molecule given in SMILES format:",
		closing:  "Please provide the predicted specific property value!",
	},
	FunctionHint: {
		subject:  "predict the property for the following molecules.",
		examples: "Below are examples of molecules in SMILES format and known property values. Note that the property is a function of molecular weight, f(M.W.):",
		query:    "Now, based on these examples, predict the property for the following molecule given in SMILES format:",
		closing:  "Please provide the predicted specific property value!",
	},
	LinearHint: {
		subject:  "predict the property for the following molecules.",
		examples: "Below are examples of molecules in SMILES format and known property values. Note that the property is represented as a linear function of molecular weight, specifically a * M.W. + b:",
		query:    "Now, based on these examples, predict the property for the following molecule given in SMILES format:",
		closing:  "Please provide the predicted specific property value!",
	},
	AllHint: {
		subject:  "predict the molecular weight for the following molecules.",
		examples: "Below are examples of molecules in SMILES format and their known molecular weights:",
		query:    "Now, based on these examples, predict the molecular weight for the following molecule given in SMILES format:",
		closing:  "Please provide the predicted specific molecular weight value!",
	},
}

// Build renders the prompt for one target molecule. Example values are
// rounded to eight decimals, one "SMILES, value" pair per line.
func Build(hint Hint, target string, examples []Example) (string, error) {
	tmpl, ok := templates[hint]
	if !ok {
		return "", errors.WithFields(
			errors.New(errors.InvalidInput, "unknown hint type"),
			errors.Fields{"hint": string(hint)})
	}

	lines := make([]string, len(examples))
	for i, ex := range examples {
		lines[i] = fmt.Sprintf("%s, %s", ex.SMILES, formatValue(ex.Value))
	}

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString(tmpl.subject)
	b.WriteString(" ")
	b.WriteString(tmpl.examples)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString(tmpl.query)
	b.WriteString("\n\n")
	b.WriteString(target)
	b.WriteString("\n\n")
	b.WriteString(tmpl.closing)
	return b.String(), nil
}

// formatValue rounds to eight decimal places and drops trailing zeros, so
// integral values print bare.
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', 8, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}
