package chem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chembench/molprop/pkg/errors"
)

func TestParseSMILES(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		atoms  int
		bonds  int
	}{
		{"ethanol", "CCO", 3, 2},
		{"benzene", "c1ccccc1", 6, 6},
		{"isobutane", "CC(C)C", 4, 3},
		{"acetic acid", "CC(=O)O", 4, 3},
		{"toluene", "Cc1ccccc1", 7, 7},
		{"chloroform", "C(Cl)(Cl)Cl", 4, 3},
		{"acetonitrile", "CC#N", 3, 2},
		{"naphthalene", "c1ccc2ccccc2c1", 10, 11},
		{"charged n", "C[N+](C)(C)C", 5, 4},
		{"deuterated", "[2H]C", 2, 1},
		{"salt fragments", "[Na+].[Cl-]", 2, 0},
		{"two digit ring", "C%10CCCCC%10", 6, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mol, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			assert.Len(t, mol.Atoms, tt.atoms)
			assert.Len(t, mol.Bonds, tt.bonds)
		})
	}
}

func TestParseSMILESInvalid(t *testing.T) {
	bad := []string{
		"",
		"C(",
		"C)",
		"C1CC", // unclosed ring
		"[Xx]",
		"[C",
		"(CC)",
		"C$C",
	}
	for _, s := range bad {
		_, err := ParseSMILES(s)
		require.Error(t, err, "smiles %q", s)
		assert.Equal(t, errors.InvalidMolecule, errors.CodeOf(err))
	}
}

func TestImplicitHydrogens(t *testing.T) {
	mol, err := ParseSMILES("CCO")
	require.NoError(t, err)
	assert.Equal(t, 3, mol.ImplicitHydrogens(0))
	assert.Equal(t, 2, mol.ImplicitHydrogens(1))
	assert.Equal(t, 1, mol.ImplicitHydrogens(2))

	mol, err = ParseSMILES("c1ccccc1")
	require.NoError(t, err)
	for i := range mol.Atoms {
		assert.Equal(t, 1, mol.ImplicitHydrogens(i))
	}

	mol, err = ParseSMILES("C[N+](C)(C)C")
	require.NoError(t, err)
	assert.Equal(t, 0, mol.ImplicitHydrogens(1))
}

func TestMolecularWeight(t *testing.T) {
	tests := []struct {
		smiles string
		want   float64
	}{
		{"C", 16.043},        // methane
		{"CCO", 46.069},      // ethanol
		{"c1ccccc1", 78.114}, // benzene
		{"O", 18.015},        // water
		{"C(Cl)(Cl)(Cl)Cl", 153.811},
	}
	for _, tt := range tests {
		mol, err := ParseSMILES(tt.smiles)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, mol.MolecularWeight(), 0.01, "smiles %s", tt.smiles)
	}
}

func TestFractionCSP3(t *testing.T) {
	for _, tt := range []struct {
		smiles string
		want   float64
	}{
		{"CCCC", 1.0},
		{"c1ccccc1", 0.0},
		{"Cc1ccccc1", 1.0 / 7.0},
		{"CC=C", 1.0 / 3.0},
		{"[Na+].[Cl-]", 0.0},
	} {
		mol, err := ParseSMILES(tt.smiles)
		require.NoError(t, err)
		assert.True(t, math.Abs(mol.FractionCSP3()-tt.want) < 1e-12, "smiles %s", tt.smiles)
	}
}

func TestRingBondCount(t *testing.T) {
	for _, tt := range []struct {
		smiles string
		want   int
	}{
		{"CCCC", 0},
		{"c1ccccc1", 1},
		{"c1ccc2ccccc2c1", 2},
		{"C1CC1.C1CC1", 2},
	} {
		mol, err := ParseSMILES(tt.smiles)
		require.NoError(t, err)
		assert.Equal(t, tt.want, mol.RingBondCount(), "smiles %s", tt.smiles)
	}
}

func TestHeavyAtomCount(t *testing.T) {
	mol, err := ParseSMILES("CC(=O)O")
	require.NoError(t, err)
	assert.Equal(t, 4, mol.HeavyAtomCount())
	assert.Equal(t, 0, mol.AromaticAtomCount())
}
