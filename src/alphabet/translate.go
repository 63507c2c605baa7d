package alphabet

// the standard genetic code (NCBI translation table 1), codons ordered TCAG
const standardCode = "FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"

var (
	// codonIndex maps a base to its 2-bit position in standardCode, 0xff marks anything else
	codonIndex [256]byte

	// complements maps any base (any case) to its uppercase complement, other bytes map to 'N'
	complements [256]byte

	dayhoff [256]byte
	hp      [256]byte
)

func init() {
	for i := range codonIndex {
		codonIndex[i] = 0xff
		complements[i] = 'N'
	}
	for i, b := range []byte("TCAG") {
		codonIndex[b] = byte(i)
		codonIndex[b+('a'-'A')] = byte(i)
	}
	codonIndex['U'], codonIndex['u'] = 0, 0
	for from, to := range map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'U': 'A'} {
		complements[from] = to
		complements[from+('a'-'A')] = to
	}

	// reduced amino acid alphabets
	for group, letter := range map[string]byte{
		"C":     'a',
		"AGPST": 'b',
		"DENQ":  'c',
		"HKR":   'd',
		"ILMV":  'e',
		"FWY":   'f',
	} {
		for i := 0; i < len(group); i++ {
			dayhoff[group[i]] = letter
		}
	}
	for i := 0; i < len("AFGILMPVWY"); i++ {
		hp["AFGILMPVWY"[i]] = 'h'
	}
	for i := 0; i < len("CDEHKNQRST"); i++ {
		hp["CDEHKNQRST"[i]] = 'p'
	}
	dayhoff[stopSymbol], hp[stopSymbol] = stopSymbol, stopSymbol
}

// Complement returns the uppercase complement of a base, or 'N' for anything that is not a base
func Complement(b byte) byte {
	return complements[b]
}

// TranslateCodon returns the amino acid encoded by three bases (any case, U or T).
// Stop codons translate to '*' and codons holding any other symbol translate to 'X'.
func TranslateCodon(b1, b2, b3 byte) byte {
	i, j, k := codonIndex[b1], codonIndex[b2], codonIndex[b3]
	if i > 3 || j > 3 || k > 3 {
		return untranslatable
	}
	return standardCode[int(i)<<4|int(j)<<2|int(k)]
}

// Reduce maps an uppercase amino acid (or '*') into the alphabet of the molecule type.
// Anything outside the amino acid alphabet reduces to 'X'.
func Reduce(m Molecule, aa byte) byte {
	var v byte
	switch m {
	case Protein:
		v = proteinOutput[aa]
	case Dayhoff:
		v = dayhoff[aa]
	case HP:
		v = hp[aa]
	default:
		return untranslatable
	}
	if v == 0 {
		return untranslatable
	}
	return v
}
