package fingerprint

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/chembench/molprop/pkg/chem"
)

// Morgan is a circular fingerprint: each atom's environment is hashed at
// growing radii and the resulting identifiers are folded into a bit vector.
type Morgan struct {
	radius int
	bits   int
}

// NewMorgan builds a Morgan fingerprinter. Radius 2 with 2048 bits is the
// usual ECFP4 setting.
func NewMorgan(radius, bits int) *Morgan {
	return &Morgan{radius: radius, bits: bits}
}

func (m *Morgan) Name() string { return fmt.Sprintf("ecfp%d_%d", m.radius*2, m.bits) }
func (m *Morgan) Dim() int     { return m.bits }

// initialInvariant packs the atom features used as the radius-0 identifier.
func initialInvariant(mol *chem.Molecule, i int) uint64 {
	a := mol.Atoms[i]
	h := fnv.New64a()
	var buf [8]byte
	put := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		h.Write(buf[:])
	}
	put(a.AtomicNum)
	put(len(mol.Neighbors(i)))
	put(mol.ImplicitHydrogens(i))
	put(a.Charge)
	if a.Aromatic {
		put(1)
	} else {
		put(0)
	}
	return h.Sum64()
}

func (m *Morgan) Compute(mol *chem.Molecule) []float64 {
	vec := make([]float64, m.bits)
	n := len(mol.Atoms)

	inv := make([]uint64, n)
	for i := range inv {
		inv[i] = initialInvariant(mol, i)
		vec[int(inv[i]%uint64(m.bits))] = 1
	}

	next := make([]uint64, n)
	for r := 1; r <= m.radius; r++ {
		for i := 0; i < n; i++ {
			// Gather (bond order, neighbor invariant) pairs in a canonical
			// order so the hash is independent of input atom ordering.
			type pair struct {
				order int
				inv   uint64
			}
			pairs := make([]pair, 0, len(mol.Neighbors(i)))
			for _, bi := range mol.Neighbors(i) {
				b := mol.Bonds[bi]
				order := b.Order
				if b.Aromatic {
					order = 4
				}
				pairs = append(pairs, pair{order: order, inv: inv[mol.OtherEnd(bi, i)]})
			}
			sort.Slice(pairs, func(a, b int) bool {
				if pairs[a].order != pairs[b].order {
					return pairs[a].order < pairs[b].order
				}
				return pairs[a].inv < pairs[b].inv
			})

			h := fnv.New64a()
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], uint64(r))
			h.Write(buf[:])
			binary.LittleEndian.PutUint64(buf[:], inv[i])
			h.Write(buf[:])
			for _, p := range pairs {
				binary.LittleEndian.PutUint64(buf[:], uint64(p.order))
				h.Write(buf[:])
				binary.LittleEndian.PutUint64(buf[:], p.inv)
				h.Write(buf[:])
			}
			next[i] = h.Sum64()
			vec[int(next[i]%uint64(m.bits))] = 1
		}
		inv, next = next, inv
	}
	return vec
}
