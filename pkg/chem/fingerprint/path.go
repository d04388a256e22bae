package fingerprint

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/chembench/molprop/pkg/chem"
)

// Path is a topological fingerprint: every linear bond path up to a maximum
// length is hashed into a bit vector. Comparable in spirit to the RDKit
// topological fingerprint, without branching subtrees.
type Path struct {
	maxLen int
	bits   int
}

func NewPath(maxLen, bits int) *Path {
	return &Path{maxLen: maxLen, bits: bits}
}

func (p *Path) Name() string { return fmt.Sprintf("path%d_%d", p.maxLen, p.bits) }
func (p *Path) Dim() int     { return p.bits }

func (p *Path) Compute(mol *chem.Molecule) []float64 {
	vec := make([]float64, p.bits)

	// Encode a path as alternating atom and bond codes. A path and its
	// reversal describe the same fragment, so hash whichever encoding is
	// lexicographically smaller.
	var walk func(atom, fromBond int, codes []uint32, visited map[int]bool)
	walk = func(atom, fromBond int, codes []uint32, visited map[int]bool) {
		codes = append(codes, atomCode(mol, atom))
		p.setBit(vec, canonical(codes))

		if (len(codes)+1)/2 > p.maxLen {
			return
		}
		visited[atom] = true
		for _, bi := range mol.Neighbors(atom) {
			if bi == fromBond {
				continue
			}
			next := mol.OtherEnd(bi, atom)
			if visited[next] {
				continue
			}
			walk(next, bi, append(codes, bondCode(mol.Bonds[bi])), visited)
		}
		delete(visited, atom)
	}

	for i := range mol.Atoms {
		walk(i, -1, nil, map[int]bool{})
	}
	return vec
}

func (p *Path) setBit(vec []float64, codes []uint32) {
	h := fnv.New64a()
	var buf [4]byte
	for _, c := range codes {
		binary.LittleEndian.PutUint32(buf[:], c)
		h.Write(buf[:])
	}
	vec[int(h.Sum64()%uint64(p.bits))] = 1
}

func atomCode(mol *chem.Molecule, i int) uint32 {
	a := mol.Atoms[i]
	code := uint32(a.AtomicNum) << 1
	if a.Aromatic {
		code |= 1
	}
	return code
}

func bondCode(b chem.Bond) uint32 {
	if b.Aromatic {
		return 4
	}
	return uint32(b.Order)
}

func canonical(codes []uint32) []uint32 {
	for i, j := 0, len(codes)-1; i < j; i, j = i+1, j-1 {
		if codes[i] != codes[j] {
			if codes[i] < codes[j] {
				return codes
			}
			rev := make([]uint32, len(codes))
			for k := range codes {
				rev[k] = codes[len(codes)-1-k]
			}
			return rev
		}
	}
	return codes
}
