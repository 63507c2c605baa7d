package minhash

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/will-rowe/smash/src/alphabet"
)

// Sketch is a MinHash sketch of a k-mer set.
//
// mins is kept sorted ascending with no duplicates. When abundance is tracked, abunds
// holds the multiplicity of each entry of mins (same index) and is never nil.
// A Sketch must not be mutated from multiple goroutines without external locking.
type Sketch struct {
	ksize        uint
	molecule     alphabet.Molecule
	seed         uint32
	size         Size
	singleStrand bool
	hashFunc     HashFunction
	mins         []uint64
	abunds       []uint64

	// scratch buffers for sequence ingestion, never shared between sketches
	fwd []byte
	rev []byte
	aa  []byte
}

// New returns an empty sketch
func New(p Params) (*Sketch, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Sketch{
		ksize:        p.KSize,
		molecule:     p.Molecule,
		seed:         p.Seed,
		size:         p.Size,
		singleStrand: p.SingleStrand,
		hashFunc:     p.HashFunction,
		mins:         []uint64{},
	}
	if p.TrackAbundance {
		s.abunds = []uint64{}
	}
	return s, nil
}

// FromParts rebuilds a sketch from previously retained hashes (and abundances, if p tracks them).
// The hashes must satisfy every invariant of the sizing mode.
func FromParts(p Params, mins, abunds []uint64) (*Sketch, error) {
	s, err := New(p)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(mins); i++ {
		if mins[i] <= mins[i-1] {
			return nil, fmt.Errorf("%w: hashes are not sorted and unique at index %d", ErrInvalidParameter, i)
		}
	}
	switch size := p.Size.(type) {
	case Num:
		if uint64(len(mins)) > uint64(size) {
			return nil, fmt.Errorf("%w: %d hashes exceed %v", ErrInvalidParameter, len(mins), size)
		}
	case Scaled:
		if len(mins) != 0 && mins[len(mins)-1] >= size.MaxHash() {
			return nil, fmt.Errorf("%w: hash %d is above the threshold for %v", ErrInvalidParameter, mins[len(mins)-1], size)
		}
	}
	if p.TrackAbundance {
		if len(abunds) != len(mins) {
			return nil, fmt.Errorf("%w: %d abundances for %d hashes", ErrInvalidParameter, len(abunds), len(mins))
		}
		s.abunds = append(s.abunds, abunds...)
	} else if len(abunds) != 0 {
		return nil, fmt.Errorf("%w: abundances given for a sketch that does not track them", ErrInvalidParameter)
	}
	s.mins = append(s.mins, mins...)
	return s, nil
}

// Params returns the parameters the sketch was built with
func (s *Sketch) Params() Params {
	return Params{
		KSize:          s.ksize,
		Molecule:       s.molecule,
		Seed:           s.seed,
		Size:           s.size,
		TrackAbundance: s.TrackAbundance(),
		SingleStrand:   s.singleStrand,
		HashFunction:   s.hashFunc,
	}
}

// KSize returns the k-mer length
func (s *Sketch) KSize() uint { return s.ksize }

// Molecule returns the molecule type
func (s *Sketch) Molecule() alphabet.Molecule { return s.molecule }

// Seed returns the hash seed
func (s *Sketch) Seed() uint32 { return s.seed }

// Size returns the sizing mode
func (s *Sketch) Size() Size { return s.size }

// TrackAbundance reports whether hash multiplicities are recorded
func (s *Sketch) TrackAbundance() bool { return s.abunds != nil }

// Len returns the number of retained hashes
func (s *Sketch) Len() int { return len(s.mins) }

// IsEmpty reports whether the sketch holds no hashes
func (s *Sketch) IsEmpty() bool { return len(s.mins) == 0 }

// Mins returns a copy of the retained hashes, sorted ascending
func (s *Sketch) Mins() []uint64 {
	return append(make([]uint64, 0, len(s.mins)), s.mins...)
}

// Abundances returns a copy of the abundances (parallel to Mins), or nil if they are not tracked
func (s *Sketch) Abundances() []uint64 {
	if s.abunds == nil {
		return nil
	}
	return append(make([]uint64, 0, len(s.abunds)), s.abunds...)
}

// AddHash inserts a single observation of a hash value
func (s *Sketch) AddHash(h uint64) {
	s.AddHashWithAbundance(h, 1)
}

// AddHashWithAbundance inserts a hash value observed abund times
func (s *Sketch) AddHashWithAbundance(h, abund uint64) {
	if abund == 0 {
		return
	}
	var limit int
	switch size := s.size.(type) {
	case Num:
		limit = int(size)
		// a full sketch can skip anything above its current maximum
		if len(s.mins) == limit && h > s.mins[limit-1] {
			return
		}
	case Scaled:
		if h >= size.MaxHash() {
			return
		}
		limit = -1
	default:
		panic(fmt.Sprintf("minhash: unhandled sizing mode %T", size))
	}

	i := sort.Search(len(s.mins), func(x int) bool { return s.mins[x] >= h })
	if i < len(s.mins) && s.mins[i] == h {
		if s.abunds != nil {
			s.abunds[i] += abund
		}
		return
	}

	// insert in sorted position
	s.mins = append(s.mins, 0)
	copy(s.mins[i+1:], s.mins[i:])
	s.mins[i] = h
	if s.abunds != nil {
		s.abunds = append(s.abunds, 0)
		copy(s.abunds[i+1:], s.abunds[i:])
		s.abunds[i] = abund
	}

	// evict the single largest value once over capacity
	if limit > 0 && len(s.mins) > limit {
		s.mins = s.mins[:limit]
		if s.abunds != nil {
			s.abunds = s.abunds[:limit]
		}
	}
}

// AddMany inserts a single observation of each hash value
func (s *Sketch) AddMany(hashes []uint64) {
	for _, h := range hashes {
		s.AddHash(h)
	}
}

// Clone returns a deep copy of the sketch
func (s *Sketch) Clone() *Sketch {
	c := &Sketch{
		ksize:        s.ksize,
		molecule:     s.molecule,
		seed:         s.seed,
		size:         s.size,
		singleStrand: s.singleStrand,
		hashFunc:     s.hashFunc,
		mins:         s.Mins(),
		abunds:       s.Abundances(),
	}
	return c
}

// Equal reports whether two sketches have the same parameters and contents
func (s *Sketch) Equal(o *Sketch) bool {
	if s.Params() != o.Params() || len(s.mins) != len(o.mins) {
		return false
	}
	for i := range s.mins {
		if s.mins[i] != o.mins[i] {
			return false
		}
	}
	for i := range s.abunds {
		if s.abunds[i] != o.abunds[i] {
			return false
		}
	}
	return true
}

// MD5 returns a digest of the k-mer size and retained hashes, identifying the sketch contents
func (s *Sketch) MD5() string {
	h := md5.New()
	h.Write([]byte(strconv.FormatUint(uint64(s.ksize), 10)))
	for _, v := range s.mins {
		h.Write([]byte(strconv.FormatUint(v, 10)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cardinality estimates the number of distinct k-mers the sketch was built from
func (s *Sketch) Cardinality() uint64 {
	switch size := s.size.(type) {
	case Scaled:
		return uint64(len(s.mins)) * uint64(size)
	case Num:
		// an unsaturated sketch has seen every distinct hash
		if uint64(len(s.mins)) < uint64(size) {
			return uint64(len(s.mins))
		}
		// k-minimum values estimate: (n-1) / normalised n-th smallest hash
		kth := float64(s.mins[len(s.mins)-1]) / float64(MaxHash)
		if kth == 0 {
			return uint64(len(s.mins))
		}
		return uint64(float64(len(s.mins)-1) / kth)
	default:
		panic(fmt.Sprintf("minhash: unhandled sizing mode %T", size))
	}
}

func (s *Sketch) String() string {
	return fmt.Sprintf("k=%d molecule=%v seed=%d %v abundance=%v hashes=%d", s.ksize, s.molecule, s.seed, s.size, s.TrackAbundance(), len(s.mins))
}
