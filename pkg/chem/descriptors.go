package chem

// Standard atomic weights, IUPAC 2021 abridged values.
var atomicMass = map[string]float64{
	"H": 1.008, "He": 4.003, "Li": 6.94, "Be": 9.012, "B": 10.81,
	"C": 12.011, "N": 14.007, "O": 15.999, "F": 18.998, "Ne": 20.180,
	"Na": 22.990, "Mg": 24.305, "Al": 26.982, "Si": 28.085, "P": 30.974,
	"S": 32.06, "Cl": 35.45, "K": 39.098, "Ca": 40.078, "Ti": 47.867,
	"Cr": 51.996, "Mn": 54.938, "Fe": 55.845, "Co": 58.933, "Ni": 58.693,
	"Cu": 63.546, "Zn": 65.38, "As": 74.922, "Se": 78.971, "Br": 79.904,
	"Sr": 87.62, "Ag": 107.868, "Cd": 112.414, "Sn": 118.710,
	"Sb": 121.760, "I": 126.904, "Ba": 137.327, "Au": 196.967,
	"Hg": 200.592, "Pb": 207.2, "Bi": 208.980,
}

const hydrogenMass = 1.008

// MolecularWeight is the average molecular weight including implicit and
// explicit hydrogens.
func (m *Molecule) MolecularWeight() float64 {
	var w float64
	for i, a := range m.Atoms {
		w += atomicMass[a.Symbol]
		w += float64(m.ImplicitHydrogens(i)) * hydrogenMass
	}
	return w
}

// HeavyAtomCount is the number of non-hydrogen atoms.
func (m *Molecule) HeavyAtomCount() int {
	n := 0
	for _, a := range m.Atoms {
		if a.AtomicNum != 1 {
			n++
		}
	}
	return n
}

// FractionCSP3 is the fraction of carbons that are sp3-hybridized: carbons
// with no aromatic, double or triple bonds. Zero when the molecule has no
// carbon at all.
func (m *Molecule) FractionCSP3() float64 {
	var carbons, sp3 int
	for i, a := range m.Atoms {
		if a.AtomicNum != 6 {
			continue
		}
		carbons++
		saturated := !a.Aromatic
		for _, bi := range m.adj[i] {
			b := m.Bonds[bi]
			if b.Aromatic || b.Order > 1 {
				saturated = false
				break
			}
		}
		if saturated {
			sp3++
		}
	}
	if carbons == 0 {
		return 0
	}
	return float64(sp3) / float64(carbons)
}

// RingBondCount is the number of bonds that close a cycle, equal to
// bonds - atoms + connected components.
func (m *Molecule) RingBondCount() int {
	seen := make([]bool, len(m.Atoms))
	components := 0
	for start := range m.Atoms {
		if seen[start] {
			continue
		}
		components++
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, bi := range m.adj[cur] {
				next := m.OtherEnd(bi, cur)
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return len(m.Bonds) - len(m.Atoms) + components
}

// AromaticAtomCount is the number of atoms flagged aromatic.
func (m *Molecule) AromaticAtomCount() int {
	n := 0
	for _, a := range m.Atoms {
		if a.Aromatic {
			n++
		}
	}
	return n
}
