package fingerprint

import "github.com/chembench/molprop/pkg/chem"

// Keys is a small structural key set: each position answers one fixed
// yes/no question about the molecule, in the manner of MACCS keys but
// defined over graph predicates rather than SMARTS patterns.
type Keys struct {
	keys []func(*chem.Molecule) bool
}

func NewKeys() *Keys {
	k := &Keys{}

	// Element presence.
	for _, num := range []int{5, 6, 7, 8, 9, 14, 15, 16, 17, 35, 53} {
		n := num
		k.add(func(m *chem.Molecule) bool { return countAtomic(m, n) > 0 })
	}
	// Element count thresholds.
	for _, t := range []struct{ num, min int }{
		{6, 4}, {6, 8}, {6, 12}, {6, 16}, {6, 20},
		{7, 2}, {7, 3}, {8, 2}, {8, 3}, {8, 4},
		{16, 2}, {17, 2}, {9, 2}, {9, 4},
	} {
		num, min := t.num, t.min
		k.add(func(m *chem.Molecule) bool { return countAtomic(m, num) >= min })
	}
	// Size buckets on heavy atoms.
	for _, min := range []int{5, 10, 15, 20, 25, 30, 40} {
		n := min
		k.add(func(m *chem.Molecule) bool { return m.HeavyAtomCount() >= n })
	}
	// Ring structure.
	for _, min := range []int{1, 2, 3, 4} {
		n := min
		k.add(func(m *chem.Molecule) bool { return m.RingBondCount() >= n })
	}
	for _, min := range []int{1, 6, 10} {
		n := min
		k.add(func(m *chem.Molecule) bool { return m.AromaticAtomCount() >= n })
	}
	// Bond orders.
	k.add(func(m *chem.Molecule) bool { return countOrder(m, 2) > 0 })
	k.add(func(m *chem.Molecule) bool { return countOrder(m, 2) >= 2 })
	k.add(func(m *chem.Molecule) bool { return countOrder(m, 3) > 0 })
	// Charge.
	k.add(func(m *chem.Molecule) bool { return hasCharge(m, 1) })
	k.add(func(m *chem.Molecule) bool { return hasCharge(m, -1) })
	// Common pairs: heteroatom bonded to carbon with a double bond
	// (carbonyl-like), N-O, S=O.
	k.add(func(m *chem.Molecule) bool { return hasBondBetween(m, 6, 8, 2) })
	k.add(func(m *chem.Molecule) bool { return hasBondBetween(m, 7, 8, 0) })
	k.add(func(m *chem.Molecule) bool { return hasBondBetween(m, 16, 8, 2) })
	k.add(func(m *chem.Molecule) bool { return hasBondBetween(m, 6, 7, 3) })
	// Saturation buckets.
	k.add(func(m *chem.Molecule) bool { return m.FractionCSP3() >= 0.25 })
	k.add(func(m *chem.Molecule) bool { return m.FractionCSP3() >= 0.5 })
	k.add(func(m *chem.Molecule) bool { return m.FractionCSP3() >= 0.75 })
	// Hydrogen load.
	for _, min := range []int{4, 8, 16, 24} {
		n := min
		k.add(func(m *chem.Molecule) bool { return totalHydrogens(m) >= n })
	}
	return k
}

func (k *Keys) add(f func(*chem.Molecule) bool) { k.keys = append(k.keys, f) }

func (k *Keys) Name() string { return "keys" }
func (k *Keys) Dim() int     { return len(k.keys) }

func (k *Keys) Compute(mol *chem.Molecule) []float64 {
	vec := make([]float64, len(k.keys))
	for i, f := range k.keys {
		if f(mol) {
			vec[i] = 1
		}
	}
	return vec
}

func countAtomic(m *chem.Molecule, num int) int {
	n := 0
	for _, a := range m.Atoms {
		if a.AtomicNum == num {
			n++
		}
	}
	return n
}

func countOrder(m *chem.Molecule, order int) int {
	n := 0
	for _, b := range m.Bonds {
		if !b.Aromatic && b.Order == order {
			n++
		}
	}
	return n
}

func hasCharge(m *chem.Molecule, sign int) bool {
	for _, a := range m.Atoms {
		if sign > 0 && a.Charge > 0 {
			return true
		}
		if sign < 0 && a.Charge < 0 {
			return true
		}
	}
	return false
}

// hasBondBetween reports a bond joining the two atomic numbers; order 0
// matches any order.
func hasBondBetween(m *chem.Molecule, numA, numB, order int) bool {
	for _, b := range m.Bonds {
		fa, ta := m.Atoms[b.From].AtomicNum, m.Atoms[b.To].AtomicNum
		if (fa == numA && ta == numB) || (fa == numB && ta == numA) {
			if order == 0 || (b.Order == order && !b.Aromatic) {
				return true
			}
		}
	}
	return false
}

func totalHydrogens(m *chem.Molecule) int {
	n := 0
	for i := range m.Atoms {
		n += m.ImplicitHydrogens(i)
	}
	return n
}
