package fingerprint

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/chembench/molprop/pkg/chem"
)

// Embedding is a continuous representation: character n-grams of the SMILES
// string are hashed into a dense vector with signed feature hashing, then
// L2-normalized. It is the only non-binary representation and gives linear
// models something other than bit counts to work with.
type Embedding struct {
	dim int
}

func NewEmbedding(dim int) *Embedding { return &Embedding{dim: dim} }

func (e *Embedding) Name() string { return fmt.Sprintf("embed_%d", e.dim) }
func (e *Embedding) Dim() int     { return e.dim }

func (e *Embedding) Compute(mol *chem.Molecule) []float64 {
	vec := make([]float64, e.dim)
	s := mol.SMILES
	for n := 2; n <= 4; n++ {
		for i := 0; i+n <= len(s); i++ {
			h := fnv.New64a()
			h.Write([]byte{byte(n)})
			h.Write([]byte(s[i : i+n]))
			sum := h.Sum64()
			idx := int(sum % uint64(e.dim))
			// One hash bit decides the sign, the usual hashing trick.
			if (sum>>63)&1 == 1 {
				vec[idx]--
			} else {
				vec[idx]++
			}
		}
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
