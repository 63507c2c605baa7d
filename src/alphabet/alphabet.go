// Package alphabet classifies and transforms the symbols of nucleotide and amino acid sequences.
//
// Every lookup is a 256 entry table indexed by the raw input byte, so validation, case folding
// and translation never allocate and lowercase input always behaves exactly like uppercase input.
package alphabet

import (
	"fmt"
	"strings"
)

// Molecule is the symbol encoding used for k-mer extraction
type Molecule uint8

// the supported molecule types
const (
	DNA Molecule = iota
	Protein
	Dayhoff
	HP
)

var moleculeNames = [...]string{
	DNA:     "DNA",
	Protein: "protein",
	Dayhoff: "dayhoff",
	HP:      "hp",
}

// String returns the name used for the molecule in persisted signatures
func (m Molecule) String() string {
	if int(m) < len(moleculeNames) {
		return moleculeNames[m]
	}
	return fmt.Sprintf("Molecule(%d)", uint8(m))
}

// Valid reports whether m is one of the defined molecule types
func (m Molecule) Valid() bool {
	return int(m) < len(moleculeNames)
}

// Translated reports whether nucleotide input is translated to amino acids for this molecule type
func (m Molecule) Translated() bool {
	return m != DNA
}

// ParseMolecule converts a molecule name (any case) to a Molecule
func ParseMolecule(name string) (Molecule, error) {
	for i, n := range moleculeNames {
		if strings.EqualFold(n, name) {
			return Molecule(i), nil
		}
	}
	return 0, fmt.Errorf("unknown molecule type: %q", name)
}

// Table maps a raw input byte to its normalised symbol, 0 marks a byte as invalid
type Table [256]byte

// Valid reports whether b is accepted by the table
func (t *Table) Valid(b byte) bool {
	return t[b] != 0
}

// Normalize returns the normalised symbol for b, or b unchanged if it is invalid
func (t *Table) Normalize(b byte) byte {
	if v := t[b]; v != 0 {
		return v
	}
	return b
}

// FirstInvalid returns the offset of the first byte in seq that the table rejects, or -1
func (t *Table) FirstInvalid(seq []byte) int {
	for i, b := range seq {
		if t[b] == 0 {
			return i
		}
	}
	return -1
}

// the canonical symbol sets
const (
	nucleotideSymbols = "ACGT"
	aminoAcidSymbols  = "ACDEFGHIKLMNPQRSTVWY"
	stopSymbol        = '*'
	untranslatable    = 'X'
)

var (
	// Nucleotides accepts unambiguous DNA/RNA bases, uracil is normalised to thymine
	Nucleotides = caseInsensitive(nucleotideSymbols)

	// AminoAcids accepts the twenty standard amino acid residues
	AminoAcids = caseInsensitive(aminoAcidSymbols)

	// the tables used on translated (and reduced) symbol streams
	proteinOutput = exact(aminoAcidSymbols + string(stopSymbol))
	dayhoffOutput = exact("abcdef" + string(stopSymbol))
	hpOutput      = exact("hp" + string(stopSymbol))
)

func init() {
	Nucleotides['U'] = 'T'
	Nucleotides['u'] = 'T'
}

func caseInsensitive(symbols string) *Table {
	t := new(Table)
	for i := 0; i < len(symbols); i++ {
		upper := symbols[i]
		t[upper] = upper
		t[upper+('a'-'A')] = upper
	}
	return t
}

func exact(symbols string) *Table {
	t := new(Table)
	for i := 0; i < len(symbols); i++ {
		t[symbols[i]] = symbols[i]
	}
	return t
}

// InputTable returns the table used to validate raw input for a molecule type.
// Translated molecule types consume nucleotides unless protein input is requested.
func InputTable(m Molecule, proteinInput bool) *Table {
	if m.Translated() && proteinInput {
		return AminoAcids
	}
	return Nucleotides
}

// OutputTable returns the table k-mers are extracted with once input has been
// normalised, translated and reduced for the molecule type
func OutputTable(m Molecule) *Table {
	switch m {
	case DNA:
		return Nucleotides
	case Protein:
		return proteinOutput
	case Dayhoff:
		return dayhoffOutput
	case HP:
		return hpOutput
	default:
		panic(fmt.Sprintf("alphabet: no output table for %v", m))
	}
}
