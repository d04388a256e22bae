// Package fingerprint turns parsed molecules into fixed-length numeric
// feature vectors. Four representations are provided: circular (Morgan)
// bits, linear path bits, a structural key set, and a hashed continuous
// embedding of the SMILES text.
package fingerprint

import (
	"github.com/chembench/molprop/pkg/chem"
	"github.com/chembench/molprop/pkg/errors"
)

// Fingerprinter converts a molecule into a feature vector of fixed width.
// Implementations must be deterministic and safe for concurrent use.
type Fingerprinter interface {
	Name() string
	Dim() int
	Compute(mol *chem.Molecule) []float64
}

// ForName returns the fingerprinter registered under name.
func ForName(name string) (Fingerprinter, error) {
	switch name {
	case "ecfp":
		return NewMorgan(2, 2048), nil
	case "topo":
		return NewPath(7, 2048), nil
	case "keys":
		return NewKeys(), nil
	case "embed":
		return NewEmbedding(768), nil
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown representation"),
			errors.Fields{"representation": name})
	}
}

// Names lists the available representation names.
func Names() []string { return []string{"ecfp", "topo", "keys", "embed"} }
