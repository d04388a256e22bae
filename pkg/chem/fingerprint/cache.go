package fingerprint

import (
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"

	"github.com/chembench/molprop/pkg/chem"
)

// Cache memoizes computed vectors by SMILES so that the hundred trials of an
// experiment never recompute the same molecule. Safe for concurrent use.
type Cache struct {
	fp Fingerprinter

	mu   sync.RWMutex
	vecs map[string][]float64
}

func NewCache(fp Fingerprinter) *Cache {
	return &Cache{fp: fp, vecs: map[string][]float64{}}
}

func (c *Cache) Fingerprinter() Fingerprinter { return c.fp }

// Vector returns the feature vector for mol, computing it on first use.
// Callers must not mutate the returned slice.
func (c *Cache) Vector(mol *chem.Molecule) []float64 {
	c.mu.RLock()
	v, ok := c.vecs[mol.SMILES]
	c.mu.RUnlock()
	if ok {
		return v
	}

	v = c.fp.Compute(mol)
	c.mu.Lock()
	c.vecs[mol.SMILES] = v
	c.mu.Unlock()
	return v
}

// Matrix computes the feature matrix for a slice of molecules, one row per
// molecule in input order. Rows are computed in parallel.
func (c *Cache) Matrix(mols []*chem.Molecule) *mat.Dense {
	rows := len(mols)
	out := mat.NewDense(rows, c.fp.Dim(), nil)

	p := pool.New().WithMaxGoroutines(runtime.GOMAXPROCS(0))
	for i, mol := range mols {
		i, mol := i, mol
		p.Go(func() {
			out.SetRow(i, c.Vector(mol))
		})
	}
	p.Wait()
	return out
}
