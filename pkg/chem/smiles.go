// Package chem provides a minimal molecular toolkit for the experiments: a
// SMILES parser producing an atom/bond graph, and the handful of descriptors
// the task table needs. It is intentionally not a general cheminformatics
// library; it covers the organic subset plus bracket atoms, which is enough
// for the ESOL molecules.
package chem

import (
	"strings"

	"github.com/chembench/molprop/pkg/errors"
)

// Atom is one node of the molecular graph.
type Atom struct {
	Symbol    string
	AtomicNum int
	Aromatic  bool
	Charge    int
	Isotope   int

	// ExplicitH is the bracket-specified hydrogen count. For organic-subset
	// atoms hydrogens are implicit and computed from valence instead.
	ExplicitH int
	bracket   bool
}

// Bond connects two atoms. Order is 1, 2 or 3; aromatic bonds carry order 1
// with Aromatic set.
type Bond struct {
	From, To int
	Order    int
	Aromatic bool
}

// Molecule is an immutable parsed structure.
type Molecule struct {
	SMILES string
	Atoms  []Atom
	Bonds  []Bond

	adj [][]int // neighbor bond indices per atom
}

// Neighbors returns the indices of bonds incident to atom i.
func (m *Molecule) Neighbors(i int) []int { return m.adj[i] }

// OtherEnd returns the atom at the far side of bond b from atom i.
func (m *Molecule) OtherEnd(b, i int) int {
	bond := m.Bonds[b]
	if bond.From == i {
		return bond.To
	}
	return bond.From
}

var atomicNumbers = map[string]int{
	"H": 1, "He": 2, "Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8,
	"F": 9, "Ne": 10, "Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15,
	"S": 16, "Cl": 17, "K": 19, "Ca": 20, "Ti": 22, "Cr": 24, "Mn": 25,
	"Fe": 26, "Co": 27, "Ni": 28, "Cu": 29, "Zn": 30, "As": 33, "Se": 34,
	"Br": 35, "Sr": 38, "Ag": 47, "Cd": 48, "Sn": 50, "Sb": 51, "I": 53,
	"Ba": 56, "Au": 79, "Hg": 80, "Pb": 82, "Bi": 83,
}

// Default valences for the organic subset, used for implicit hydrogens.
var defaultValence = map[string]int{
	"B": 3, "C": 4, "N": 3, "O": 2, "P": 3, "S": 2,
	"F": 1, "Cl": 1, "Br": 1, "I": 1,
}

type ringBond struct {
	atom  int
	order int
}

type parser struct {
	smiles string
	pos    int
	mol    *Molecule

	prev      int // index of the atom a new atom bonds to, -1 at start
	stack     []int
	pendOrder int // bond order taken by the next atom; 0 = default
	rings     map[int]ringBond
}

func parseErr(smiles string, pos int, msg string) error {
	return errors.WithFields(
		errors.New(errors.InvalidMolecule, msg),
		errors.Fields{"smiles": smiles, "pos": pos})
}

// ParseSMILES parses a SMILES string into a molecular graph. A molecule that
// cannot be parsed must be excluded from the experiment pool entirely; see
// dataset.Load.
func ParseSMILES(smiles string) (*Molecule, error) {
	s := strings.TrimSpace(smiles)
	if s == "" {
		return nil, parseErr(smiles, 0, "empty SMILES")
	}

	p := &parser{
		smiles: s,
		mol:    &Molecule{SMILES: s},
		prev:   -1,
		rings:  map[int]ringBond{},
	}

	if err := p.run(); err != nil {
		return nil, err
	}
	if len(p.stack) != 0 {
		return nil, parseErr(s, p.pos, "unbalanced parentheses")
	}
	if len(p.rings) != 0 {
		return nil, parseErr(s, p.pos, "unclosed ring bond")
	}
	if len(p.mol.Atoms) == 0 {
		return nil, parseErr(s, 0, "no atoms")
	}

	p.mol.buildAdjacency()
	return p.mol, nil
}

func (p *parser) run() error {
	for p.pos < len(p.smiles) {
		c := p.smiles[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return parseErr(p.smiles, p.pos, "branch before any atom")
			}
			p.stack = append(p.stack, p.prev)
			p.pos++
		case c == ')':
			if len(p.stack) == 0 {
				return parseErr(p.smiles, p.pos, "unbalanced parentheses")
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pos++
		case c == '-':
			p.pendOrder = 1
			p.pos++
		case c == '=':
			p.pendOrder = 2
			p.pos++
		case c == '#':
			p.pendOrder = 3
			p.pos++
		case c == ':':
			// Explicit aromatic bond; aromaticity is derived from the atoms.
			p.pendOrder = 1
			p.pos++
		case c == '/' || c == '\\':
			// Cis/trans markers are ignored; the bond itself is single.
			p.pos++
		case c == '.':
			// Disconnected fragment: next atom starts a new component.
			p.prev = -1
			p.pos++
		case c == '%':
			if err := p.ringClosurePercent(); err != nil {
				return err
			}
		case c >= '0' && c <= '9':
			if err := p.ringClosure(int(c - '0')); err != nil {
				return err
			}
			p.pos++
		case c == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.organicAtom(); err != nil {
				return err
			}
		}
	}
	return nil
}

// organicAtom consumes an unbracketed organic-subset atom.
func (p *parser) organicAtom() error {
	rest := p.smiles[p.pos:]

	// Two-letter symbols first.
	for _, sym := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, sym) {
			p.addAtom(Atom{Symbol: sym, AtomicNum: atomicNumbers[sym]})
			p.pos += 2
			return nil
		}
	}

	c := rest[0]
	switch c {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		sym := string(c)
		p.addAtom(Atom{Symbol: sym, AtomicNum: atomicNumbers[sym]})
	case 'b', 'c', 'n', 'o', 'p', 's':
		sym := strings.ToUpper(string(c))
		p.addAtom(Atom{Symbol: sym, AtomicNum: atomicNumbers[sym], Aromatic: true})
	default:
		return parseErr(p.smiles, p.pos, "unexpected character")
	}
	p.pos++
	return nil
}

// bracketAtom consumes an atom of the form [isotope symbol chirality Hn charge].
func (p *parser) bracketAtom() error {
	start := p.pos
	end := strings.IndexByte(p.smiles[p.pos:], ']')
	if end < 0 {
		return parseErr(p.smiles, start, "unterminated bracket atom")
	}
	body := p.smiles[p.pos+1 : p.pos+end]
	p.pos += end + 1

	atom := Atom{bracket: true}
	i := 0

	// Isotope prefix.
	for i < len(body) && body[i] >= '0' && body[i] <= '9' {
		atom.Isotope = atom.Isotope*10 + int(body[i]-'0')
		i++
	}

	if i >= len(body) {
		return parseErr(p.smiles, start, "bracket atom without element")
	}

	// Element symbol; lowercase first letter means aromatic.
	if body[i] >= 'a' && body[i] <= 'z' {
		atom.Aromatic = true
		atom.Symbol = strings.ToUpper(string(body[i]))
		i++
	} else {
		atom.Symbol = string(body[i])
		i++
		if i < len(body) && body[i] >= 'a' && body[i] <= 'z' {
			two := atom.Symbol + string(body[i])
			if _, ok := atomicNumbers[two]; ok {
				atom.Symbol = two
				i++
			}
		}
	}

	num, ok := atomicNumbers[atom.Symbol]
	if !ok {
		return parseErr(p.smiles, start, "unknown element "+atom.Symbol)
	}
	atom.AtomicNum = num

	for i < len(body) {
		switch body[i] {
		case '@':
			// Chirality is not modeled.
			i++
		case 'H':
			i++
			atom.ExplicitH = 1
			if i < len(body) && body[i] >= '0' && body[i] <= '9' {
				atom.ExplicitH = int(body[i] - '0')
				i++
			}
		case '+', '-':
			sign := 1
			if body[i] == '-' {
				sign = -1
			}
			i++
			n := 1
			if i < len(body) && body[i] >= '0' && body[i] <= '9' {
				n = int(body[i] - '0')
				i++
			} else {
				// Stacked ++ / -- forms.
				for i < len(body) && (body[i] == '+' || body[i] == '-') {
					n++
					i++
				}
			}
			atom.Charge = sign * n
		default:
			return parseErr(p.smiles, start, "unsupported bracket annotation")
		}
	}

	p.addAtom(atom)
	return nil
}

func (p *parser) addAtom(a Atom) {
	idx := len(p.mol.Atoms)
	p.mol.Atoms = append(p.mol.Atoms, a)

	if p.prev >= 0 {
		order := p.pendOrder
		aromatic := order == 0 && a.Aromatic && p.mol.Atoms[p.prev].Aromatic
		if order == 0 {
			order = 1
		}
		p.mol.Bonds = append(p.mol.Bonds, Bond{From: p.prev, To: idx, Order: order, Aromatic: aromatic})
	}
	p.pendOrder = 0
	p.prev = idx
}

func (p *parser) ringClosure(n int) error {
	if p.prev < 0 {
		return parseErr(p.smiles, p.pos, "ring closure before any atom")
	}
	if open, ok := p.rings[n]; ok {
		delete(p.rings, n)
		if open.atom == p.prev {
			return parseErr(p.smiles, p.pos, "ring bond to self")
		}
		order := p.pendOrder
		if order == 0 {
			order = open.order
		}
		a, b := p.mol.Atoms[open.atom], p.mol.Atoms[p.prev]
		aromatic := order == 0 && a.Aromatic && b.Aromatic
		if order == 0 {
			order = 1
		}
		p.mol.Bonds = append(p.mol.Bonds, Bond{From: open.atom, To: p.prev, Order: order, Aromatic: aromatic})
	} else {
		p.rings[n] = ringBond{atom: p.prev, order: p.pendOrder}
	}
	p.pendOrder = 0
	return nil
}

func (p *parser) ringClosurePercent() error {
	if p.pos+2 >= len(p.smiles) {
		return parseErr(p.smiles, p.pos, "truncated %% ring closure")
	}
	d1, d2 := p.smiles[p.pos+1], p.smiles[p.pos+2]
	if d1 < '0' || d1 > '9' || d2 < '0' || d2 > '9' {
		return parseErr(p.smiles, p.pos, "malformed %% ring closure")
	}
	n := int(d1-'0')*10 + int(d2-'0')
	p.pos += 3
	return p.ringClosure(n)
}

func (m *Molecule) buildAdjacency() {
	m.adj = make([][]int, len(m.Atoms))
	for bi, b := range m.Bonds {
		m.adj[b.From] = append(m.adj[b.From], bi)
		m.adj[b.To] = append(m.adj[b.To], bi)
	}
}

// ImplicitHydrogens returns the implied hydrogen count on atom i. Bracket
// atoms carry their hydrogen count explicitly; organic-subset atoms fill up
// to the default valence, with aromatic bonds counted as one and a half.
func (m *Molecule) ImplicitHydrogens(i int) int {
	a := m.Atoms[i]
	if a.bracket {
		return a.ExplicitH
	}
	valence, ok := defaultValence[a.Symbol]
	if !ok {
		return 0
	}

	var sum2 int // twice the bond order sum, to keep aromatic halves exact
	for _, bi := range m.adj[i] {
		b := m.Bonds[bi]
		if b.Aromatic {
			sum2 += 3
		} else {
			sum2 += 2 * b.Order
		}
	}
	used := (sum2 + 1) / 2 // round half-orders up
	// A positive charge on N or P adds a bonding site; negative removes one.
	h := valence + a.Charge - used
	if h < 0 {
		return 0
	}
	return h
}
