// Package signature bundles the sketches built from one sequence source, along with the
// parameter sets that describe them and the persisted signature format.
package signature

import (
	"fmt"

	"github.com/will-rowe/smash/src/alphabet"
	"github.com/will-rowe/smash/src/minhash"
)

// Signature is a named collection of sketches built from one logical sequence source.
// No two sketches share the same k-mer size, molecule type and seed.
type Signature struct {
	Name     string
	Filename string

	sketches       []*minhash.Sketch
	inputIsProtein bool
}

// Comparison holds the results of comparing one matching pair of sketches
type Comparison struct {
	KSize       uint
	Molecule    alphabet.Molecule
	Similarity  float64
	Containment float64
}

// New returns a signature holding one empty sketch per entry of the parameter set
func New(name, filename string, ps *ParameterSet) (*Signature, error) {
	sig := &Signature{
		Name:           name,
		Filename:       filename,
		inputIsProtein: ps.InputIsProtein(),
	}
	for _, p := range ps.Params() {
		sketch, err := minhash.New(p)
		if err != nil {
			return nil, err
		}
		sig.sketches = append(sig.sketches, sketch)
	}
	return sig, nil
}

// FromSketches bundles existing sketches into a signature, the signature takes ownership of them
func FromSketches(name, filename string, sketches ...*minhash.Sketch) (*Signature, error) {
	sig := &Signature{Name: name, Filename: filename}
	for _, sketch := range sketches {
		for _, held := range sig.sketches {
			if sameKey(held, sketch) {
				return nil, fmt.Errorf("%w: more than one sketch with k=%d molecule=%v seed=%d", minhash.ErrInvalidParameter, sketch.KSize(), sketch.Molecule(), sketch.Seed())
			}
		}
		sig.sketches = append(sig.sketches, sketch)
	}
	return sig, nil
}

func sameKey(a, b *minhash.Sketch) bool {
	return a.KSize() == b.KSize() && a.Molecule() == b.Molecule() && a.Seed() == b.Seed()
}

// DisplayName returns the name, falling back to the filename and then the contents digest
func (sig *Signature) DisplayName() string {
	switch {
	case sig.Name != "":
		return sig.Name
	case sig.Filename != "":
		return sig.Filename
	case len(sig.sketches) != 0:
		return sig.sketches[0].MD5()[:8]
	}
	return ""
}

// Sketches returns the sketches held by the signature
func (sig *Signature) Sketches() []*minhash.Sketch {
	return append([]*minhash.Sketch(nil), sig.sketches...)
}

// Len returns the number of sketches in the signature
func (sig *Signature) Len() int {
	return len(sig.sketches)
}

// Select returns the first sketch with the given k-mer size and molecule type, or nil
func (sig *Signature) Select(k uint, molecule alphabet.Molecule) *minhash.Sketch {
	for _, sketch := range sig.sketches {
		if sketch.KSize() == k && sketch.Molecule() == molecule {
			return sketch
		}
	}
	return nil
}

// match finds the counterpart of a sketch, preferring an identical seed so that a seed
// mismatch is only reported when nothing better exists
func (sig *Signature) match(sketch *minhash.Sketch) *minhash.Sketch {
	for _, candidate := range sig.sketches {
		if sameKey(candidate, sketch) {
			return candidate
		}
	}
	return sig.Select(sketch.KSize(), sketch.Molecule())
}

// AddSequence adds a sequence record to every sketch in the signature.
// When the signature was built for protein input, the record is treated as amino acids.
// The record is validated once, so a failure under force=false leaves every sketch unchanged.
func (sig *Signature) AddSequence(seq []byte, force bool) error {
	if sig.inputIsProtein {
		return sig.AddProtein(seq, force)
	}
	if !force {
		if i := alphabet.Nucleotides.FirstInvalid(seq); i >= 0 {
			return sig.invalid(seq, i)
		}
	}
	for _, sketch := range sig.sketches {
		if err := sketch.AddSequence(seq, true); err != nil {
			return err
		}
	}
	return nil
}

// AddProtein adds an amino acid record to every sketch, all of which must be protein, dayhoff or hp
func (sig *Signature) AddProtein(seq []byte, force bool) error {
	for _, sketch := range sig.sketches {
		if !sketch.Molecule().Translated() {
			return fmt.Errorf("%w: cannot add an amino acid sequence to a %v sketch", minhash.ErrInvalidParameter, sketch.Molecule())
		}
	}
	if !force {
		if i := alphabet.AminoAcids.FirstInvalid(seq); i >= 0 {
			return sig.invalid(seq, i)
		}
	}
	for _, sketch := range sig.sketches {
		if err := sketch.AddProtein(seq, true); err != nil {
			return err
		}
	}
	return nil
}

func (sig *Signature) invalid(seq []byte, offset int) error {
	err := &minhash.InvalidSequenceError{Offset: offset, Symbol: seq[offset]}
	if len(sig.sketches) != 0 {
		err.Molecule = sig.sketches[0].Molecule()
	}
	return err
}

// Merge merges every sketch with its counterpart in another signature.
// Both signatures must hold the same sketches. On error the signature is unchanged.
func (sig *Signature) Merge(o *Signature, downsample bool) error {
	if len(sig.sketches) != len(o.sketches) {
		return fmt.Errorf("%w: signatures hold %d and %d sketches", minhash.ErrIncompatibleSketch, len(sig.sketches), len(o.sketches))
	}
	merged := make([]*minhash.Sketch, len(sig.sketches))
	for i, sketch := range sig.sketches {
		other := o.match(sketch)
		if other == nil {
			return fmt.Errorf("%w: no k=%d %v sketch to merge with", minhash.ErrIncompatibleSketch, sketch.KSize(), sketch.Molecule())
		}
		merged[i] = sketch.Clone()
		if err := merged[i].Merge(other, downsample); err != nil {
			return err
		}
	}
	sig.sketches = merged
	return nil
}

// Downsample returns a copy of the signature with every sketch downsampled
func (sig *Signature) Downsample(size minhash.Size) (*Signature, error) {
	c := &Signature{Name: sig.Name, Filename: sig.Filename, inputIsProtein: sig.inputIsProtein}
	for _, sketch := range sig.sketches {
		d, err := sketch.Downsample(size)
		if err != nil {
			return nil, err
		}
		c.sketches = append(c.sketches, d)
	}
	return c, nil
}

// Clone returns a deep copy of the signature
func (sig *Signature) Clone() *Signature {
	c := &Signature{Name: sig.Name, Filename: sig.Filename, inputIsProtein: sig.inputIsProtein}
	for _, sketch := range sig.sketches {
		c.sketches = append(c.sketches, sketch.Clone())
	}
	return c
}

// Similarity compares the first sketch that has a counterpart in the other signature.
// The comparison is abundance weighted when both sketches track abundance.
func (sig *Signature) Similarity(o *Signature, downsample bool) (float64, error) {
	a, b, err := sig.firstPair(o)
	if err != nil {
		return 0, err
	}
	return similarity(a, b, downsample)
}

// Containment estimates the fraction of this signature's k-mers found in the other,
// using the first sketch that has a counterpart
func (sig *Signature) Containment(o *Signature) (float64, error) {
	a, b, err := sig.firstPair(o)
	if err != nil {
		return 0, err
	}
	return a.Containment(b)
}

// Compare compares every sketch that has a counterpart in the other signature
func (sig *Signature) Compare(o *Signature, downsample bool) ([]Comparison, error) {
	results := []Comparison{}
	for _, a := range sig.sketches {
		b := o.match(a)
		if b == nil {
			continue
		}
		sim, err := similarity(a, b, downsample)
		if err != nil {
			return nil, err
		}
		containment, err := a.Containment(b)
		if err != nil {
			return nil, err
		}
		results = append(results, Comparison{
			KSize:       a.KSize(),
			Molecule:    a.Molecule(),
			Similarity:  sim,
			Containment: containment,
		})
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no sketches in common", minhash.ErrIncompatibleSketch)
	}
	return results, nil
}

func (sig *Signature) firstPair(o *Signature) (*minhash.Sketch, *minhash.Sketch, error) {
	for _, a := range sig.sketches {
		if b := o.match(a); b != nil {
			return a, b, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: no sketches in common", minhash.ErrIncompatibleSketch)
}

// similarity is weighted when both sketches track abundance, plain Jaccard otherwise
func similarity(a, b *minhash.Sketch, downsample bool) (float64, error) {
	weighted := a.TrackAbundance() && b.TrackAbundance()
	return a.Similarity(b, downsample, !weighted)
}
