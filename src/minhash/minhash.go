// Package minhash contains the bottom-n (MinHash) and scaled (FracMinHash) sketches of k-mer sets.
// Sequences are decomposed into k-mers, canonicalised, hashed with a seeded hash function and the
// hash values sampled according to the sketch's sizing mode.
package minhash

import (
	"fmt"
	"math"
	"strings"

	"github.com/will-rowe/ntHash"

	"github.com/will-rowe/smash/src/alphabet"
)

// DefaultSeed is the hash seed used when none is specified
const DefaultSeed uint32 = 42

// MaxHash is the top of the hash range
const MaxHash uint64 = math.MaxUint64

// MaxNum is the largest number of hashes a bottom-n sketch can keep
const MaxNum = Num(math.MaxInt32)

// Size is the sizing mode of a sketch, it is either Num or Scaled
type Size interface {
	fmt.Stringer
	sizing()
}

// Num keeps the n smallest distinct hash values seen
type Num uint64

// Scaled keeps every distinct hash value below MaxHash/s
type Scaled uint64

func (Num) sizing()    {}
func (Scaled) sizing() {}

func (n Num) String() string { return fmt.Sprintf("num=%d", uint64(n)) }

func (s Scaled) String() string { return fmt.Sprintf("scaled=%d", uint64(s)) }

// MaxHash returns the exclusive threshold for hash values retained at this scale
func (s Scaled) MaxHash() uint64 {
	return MaxHash / uint64(s)
}

// ScaledFromMaxHash recovers the smallest scale factor with the given threshold.
// Above 2^32 several scale factors share a threshold, so persisted sketches also record scaled.
func ScaledFromMaxHash(maxHash uint64) Scaled {
	switch maxHash {
	case 0:
		return 0
	case MaxHash:
		return 1
	}
	return Scaled(MaxHash/(maxHash+1) + 1)
}

// HashFunction identifies the function used to hash k-mers
type HashFunction uint8

// the available hash functions
const (
	Murmur64 HashFunction = iota // MurmurHash3 x64_128, first 64 bits
	NtHash                       // rolling ntHash, DNA only
)

var hashFunctionNames = [...]string{
	Murmur64: "0.murmur64",
	NtHash:   "1.nthash",
}

func (hf HashFunction) String() string {
	if int(hf) < len(hashFunctionNames) {
		return hashFunctionNames[hf]
	}
	return fmt.Sprintf("HashFunction(%d)", uint8(hf))
}

// ParseHashFunction accepts either the full name ("0.murmur64") or the short one ("murmur64")
func ParseHashFunction(name string) (HashFunction, error) {
	for i, n := range hashFunctionNames {
		if strings.EqualFold(name, n) || strings.EqualFold(name, n[2:]) {
			return HashFunction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown hash function %q", ErrInvalidParameter, name)
}

// Params describes a sketch
type Params struct {
	KSize          uint // k-mer length, in amino acids for translated molecule types
	Molecule       alphabet.Molecule
	Seed           uint32
	Size           Size
	TrackAbundance bool
	SingleStrand   bool // no canonicalisation for DNA, forward frames only when translating
	HashFunction   HashFunction
}

// Validate checks the parameters can be used to build a sketch
func (p Params) Validate() error {
	if p.KSize == 0 {
		return fmt.Errorf("%w: k-mer size must be greater than 0", ErrInvalidParameter)
	}
	if !p.Molecule.Valid() {
		return fmt.Errorf("%w: unknown molecule type %v", ErrInvalidParameter, p.Molecule)
	}
	switch size := p.Size.(type) {
	case Num:
		if size == 0 {
			return fmt.Errorf("%w: num must be greater than 0", ErrInvalidParameter)
		}
		if size > MaxNum {
			return fmt.Errorf("%w: num can't be more than %d", ErrInvalidParameter, uint64(MaxNum))
		}
	case Scaled:
		if size == 0 {
			return fmt.Errorf("%w: scaled must be greater than 0", ErrInvalidParameter)
		}
	case nil:
		return fmt.Errorf("%w: no sizing mode set", ErrInvalidParameter)
	default:
		panic(fmt.Sprintf("minhash: unhandled sizing mode %T", size))
	}
	switch p.HashFunction {
	case Murmur64:
	case NtHash:
		if p.Molecule != alphabet.DNA {
			return fmt.Errorf("%w: %v can only hash DNA k-mers", ErrInvalidParameter, p.HashFunction)
		}
		if p.KSize > ntHash.MAXIMUM_K_SIZE {
			return fmt.Errorf("%w: %v can't hash k-mers longer than %d (k=%d)", ErrInvalidParameter, p.HashFunction, ntHash.MAXIMUM_K_SIZE, p.KSize)
		}
	default:
		return fmt.Errorf("%w: unknown hash function %v", ErrInvalidParameter, p.HashFunction)
	}
	return nil
}

// sameKind reports whether two sizing modes are the same variant
func sameKind(a, b Size) bool {
	switch a.(type) {
	case Num:
		_, ok := b.(Num)
		return ok
	case Scaled:
		_, ok := b.(Scaled)
		return ok
	default:
		panic(fmt.Sprintf("minhash: unhandled sizing mode %T", a))
	}
}

// coarser returns the sizing of the two (same kind) that keeps the fewest hashes
func coarser(a, b Size) Size {
	switch x := a.(type) {
	case Num:
		if y := b.(Num); y < x {
			return y
		}
	case Scaled:
		if y := b.(Scaled); y > x {
			return y
		}
	default:
		panic(fmt.Sprintf("minhash: unhandled sizing mode %T", a))
	}
	return a
}
