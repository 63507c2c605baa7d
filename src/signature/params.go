package signature

import (
	"fmt"
	"sort"

	"github.com/will-rowe/smash/src/alphabet"
	"github.com/will-rowe/smash/src/minhash"
)

// DefaultNum is the number of hashes kept by default
const DefaultNum uint64 = 500

// the default parameter set
var (
	DefaultKSizes    = []uint{21, 31, 51}
	DefaultMolecules = []alphabet.Molecule{alphabet.DNA}
)

// Options is the configuration surface a ParameterSet is built from.
// Exactly one of Num and Scaled should be non-zero.
type Options struct {
	KSizes         []uint
	Molecules      []alphabet.Molecule
	Num            uint64
	Scaled         uint64
	Seed           uint32
	TrackAbundance bool
	SingleStrand   bool
	HashFunction   minhash.HashFunction

	// InputIsProtein means records hold amino acids rather than nucleotides
	InputIsProtein bool
}

// DefaultOptions returns the options used when nothing else is asked for
func DefaultOptions() Options {
	return Options{
		KSizes:    append([]uint(nil), DefaultKSizes...),
		Molecules: append([]alphabet.Molecule(nil), DefaultMolecules...),
		Num:       DefaultNum,
		Seed:      minhash.DefaultSeed,
	}
}

// ParameterSet is the validated, immutable template that new signatures are instantiated from
type ParameterSet struct {
	params         []minhash.Params
	inputIsProtein bool
}

// NewParameterSet validates the options and expands them to one sketch description per
// k-mer size and molecule combination. Repeated k-mer sizes or molecules are collapsed.
func NewParameterSet(opts Options) (*ParameterSet, error) {
	if len(opts.KSizes) == 0 {
		return nil, fmt.Errorf("%w: no k-mer sizes requested", minhash.ErrInvalidParameter)
	}
	if len(opts.Molecules) == 0 {
		return nil, fmt.Errorf("%w: no molecule types requested", minhash.ErrInvalidParameter)
	}
	var size minhash.Size
	switch {
	case opts.Num != 0 && opts.Scaled != 0:
		return nil, fmt.Errorf("%w: num and scaled are mutually exclusive", minhash.ErrInvalidParameter)
	case opts.Num != 0:
		size = minhash.Num(opts.Num)
	case opts.Scaled != 0:
		size = minhash.Scaled(opts.Scaled)
	default:
		return nil, fmt.Errorf("%w: one of num or scaled must be greater than 0", minhash.ErrInvalidParameter)
	}

	ksizes := uniqueKSizes(opts.KSizes)
	molecules := uniqueMolecules(opts.Molecules)
	ps := &ParameterSet{inputIsProtein: opts.InputIsProtein}
	for _, mol := range molecules {
		if opts.InputIsProtein && !mol.Translated() {
			return nil, fmt.Errorf("%w: cannot build a %v sketch from protein input", minhash.ErrInvalidParameter, mol)
		}
		for _, k := range ksizes {
			p := minhash.Params{
				KSize:          k,
				Molecule:       mol,
				Seed:           opts.Seed,
				Size:           size,
				TrackAbundance: opts.TrackAbundance,
				SingleStrand:   opts.SingleStrand,
				HashFunction:   opts.HashFunction,
			}
			if err := p.Validate(); err != nil {
				return nil, err
			}
			ps.params = append(ps.params, p)
		}
	}
	return ps, nil
}

// Params returns a copy of the sketch descriptions in the set
func (ps *ParameterSet) Params() []minhash.Params {
	return append([]minhash.Params(nil), ps.params...)
}

// Len returns the number of sketches a signature built from the set holds
func (ps *ParameterSet) Len() int {
	return len(ps.params)
}

// InputIsProtein reports whether records are amino acid sequences
func (ps *ParameterSet) InputIsProtein() bool {
	return ps.inputIsProtein
}

func uniqueKSizes(ksizes []uint) []uint {
	seen := make(map[uint]struct{}, len(ksizes))
	unique := []uint{}
	for _, k := range ksizes {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			unique = append(unique, k)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}

func uniqueMolecules(molecules []alphabet.Molecule) []alphabet.Molecule {
	seen := make(map[alphabet.Molecule]struct{}, len(molecules))
	unique := []alphabet.Molecule{}
	for _, m := range molecules {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			unique = append(unique, m)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}
