package minhash

import (
	"errors"
	"fmt"

	"github.com/will-rowe/smash/src/alphabet"
)

// the error kinds reported by sketches, test for them with errors.Is
var (
	ErrInvalidSequence    = errors.New("invalid sequence")
	ErrIncompatibleSketch = errors.New("incompatible sketches")
	ErrSizingMismatch     = errors.New("sizing mode mismatch")
	ErrAbundanceMismatch  = errors.New("abundance tracking mismatch")
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrUpsizeRejected     = errors.New("cannot downsample to a larger sketch")
)

// InvalidSequenceError records where a sequence failed validation
type InvalidSequenceError struct {
	Offset   int
	Symbol   byte
	Molecule alphabet.Molecule
}

func (e *InvalidSequenceError) Error() string {
	return fmt.Sprintf("%v: invalid symbol %q at offset %d (%v sketch)", ErrInvalidSequence, e.Symbol, e.Offset, e.Molecule)
}

// Is lets errors.Is match ErrInvalidSequence
func (e *InvalidSequenceError) Is(target error) bool {
	return target == ErrInvalidSequence
}

// Mismatch names the parameter two sketches disagree on
type Mismatch uint8

// the parameters checked before sketches are merged or compared
const (
	MismatchKSize Mismatch = iota
	MismatchMolecule
	MismatchSeed
	MismatchHashFunction
	MismatchStrand
	MismatchSizing
	MismatchAbundance
)

var mismatchNames = [...]string{
	MismatchKSize:        "k-mer size",
	MismatchMolecule:     "molecule type",
	MismatchSeed:         "seed",
	MismatchHashFunction: "hash function",
	MismatchStrand:       "strandedness",
	MismatchSizing:       "sizing mode",
	MismatchAbundance:    "abundance tracking",
}

func (m Mismatch) String() string {
	if int(m) < len(mismatchNames) {
		return mismatchNames[m]
	}
	return fmt.Sprintf("Mismatch(%d)", uint8(m))
}

// IncompatibleError is returned when two sketches cannot be merged or compared
type IncompatibleError struct {
	Reason Mismatch
	A, B   interface{}
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("%v: %v differs (%v vs. %v)", ErrIncompatibleSketch, e.Reason, e.A, e.B)
}

// Is matches ErrIncompatibleSketch, and ErrSizingMismatch or ErrAbundanceMismatch when that is the reason
func (e *IncompatibleError) Is(target error) bool {
	switch target {
	case ErrIncompatibleSketch:
		return true
	case ErrSizingMismatch:
		return e.Reason == MismatchSizing
	case ErrAbundanceMismatch:
		return e.Reason == MismatchAbundance
	}
	return false
}

func incompatible(reason Mismatch, a, b interface{}) error {
	return &IncompatibleError{Reason: reason, A: a, B: b}
}
