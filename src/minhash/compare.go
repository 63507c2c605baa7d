package minhash

import (
	"fmt"
	"math"
	"sort"
)

// checkCompatible makes sure two sketches hash the same k-mers the same way
func (s *Sketch) checkCompatible(o *Sketch) error {
	switch {
	case s.ksize != o.ksize:
		return incompatible(MismatchKSize, s.ksize, o.ksize)
	case s.molecule != o.molecule:
		return incompatible(MismatchMolecule, s.molecule, o.molecule)
	case s.seed != o.seed:
		return incompatible(MismatchSeed, s.seed, o.seed)
	case s.hashFunc != o.hashFunc:
		return incompatible(MismatchHashFunction, s.hashFunc, o.hashFunc)
	case s.singleStrand != o.singleStrand:
		return incompatible(MismatchStrand, s.singleStrand, o.singleStrand)
	}
	return nil
}

// commonSize returns the sizing both sketches can be restricted to.
// Differing sizes of the same kind are reconciled only when downsampling is allowed.
func commonSize(a, b *Sketch, downsample bool) (Size, error) {
	if !sameKind(a.size, b.size) {
		return nil, incompatible(MismatchSizing, a.size, b.size)
	}
	if a.size == b.size {
		return a.size, nil
	}
	if !downsample {
		return nil, incompatible(MismatchSizing, a.size, b.size)
	}
	return coarser(a.size, b.size), nil
}

// restrict returns the retained hashes (and abundances) that survive a coarser sizing.
// As mins is sorted, the result is always a prefix and shares storage with the sketch.
func (s *Sketch) restrict(size Size) (mins, abunds []uint64) {
	mins = s.mins
	switch sz := size.(type) {
	case Num:
		if uint64(len(mins)) > uint64(sz) {
			mins = mins[:sz]
		}
	case Scaled:
		threshold := sz.MaxHash()
		mins = mins[:sort.Search(len(mins), func(x int) bool { return mins[x] >= threshold })]
	default:
		panic(fmt.Sprintf("minhash: unhandled sizing mode %T", size))
	}
	if s.abunds != nil {
		abunds = s.abunds[:len(mins)]
	}
	return mins, abunds
}

// countCommon returns the size of the intersection of two sorted hash lists
func countCommon(a, b []uint64) int {
	i, j, common := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			common++
			i++
			j++
		}
	}
	return common
}

// bottomUnion walks the n smallest values of the union of two sorted hash lists,
// returning how many of them are shared and how many were walked
func bottomUnion(a, b []uint64, n int) (common, union int) {
	i, j := 0, 0
	for union < n && (i < len(a) || j < len(b)) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			i++
		case i >= len(a) || b[j] < a[i]:
			j++
		default:
			common++
			i++
			j++
		}
		union++
	}
	return common, union
}

// angularSimilarity compares two abundance vectors keyed by sorted hash lists
func angularSimilarity(am, aa, bm, ba []uint64) float64 {
	var dot, normA, normB float64
	for _, v := range aa {
		normA += float64(v) * float64(v)
	}
	for _, v := range ba {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	i, j := 0, 0
	for i < len(am) && j < len(bm) {
		switch {
		case am[i] < bm[j]:
			i++
		case am[i] > bm[j]:
			j++
		default:
			dot += float64(aa[i]) * float64(ba[j])
			i++
			j++
		}
	}
	cos := dot / math.Sqrt(normA*normB)
	if cos > 1 {
		cos = 1
	}
	return 1 - 2*math.Acos(cos)/math.Pi
}

// Similarity estimates the Jaccard similarity of the k-mer sets behind two sketches.
//
// If both sketches track abundance and ignoreAbundance is false, the abundance weighted (angular)
// similarity is returned instead, and a tracked/untracked pair is an error. Sketches of differing
// num or scaled are only compared when downsample is set, after restricting both to the coarser size.
func (s *Sketch) Similarity(o *Sketch, downsample, ignoreAbundance bool) (float64, error) {
	if err := s.checkCompatible(o); err != nil {
		return 0, err
	}
	size, err := commonSize(s, o, downsample)
	if err != nil {
		return 0, err
	}
	am, aa := s.restrict(size)
	bm, ba := o.restrict(size)
	if !ignoreAbundance {
		if s.TrackAbundance() != o.TrackAbundance() {
			return 0, incompatible(MismatchAbundance, s.TrackAbundance(), o.TrackAbundance())
		}
		if s.TrackAbundance() {
			return angularSimilarity(am, aa, bm, ba), nil
		}
	}

	var common, union int
	switch sz := size.(type) {
	case Num:
		common, union = bottomUnion(am, bm, int(sz))
	case Scaled:
		common = countCommon(am, bm)
		union = len(am) + len(bm) - common
	}
	if union == 0 {
		return 0, nil
	}
	return float64(common) / float64(union), nil
}

// restrictPair restricts two compatible sketches to the coarser of their sizes
func (s *Sketch) restrictPair(o *Sketch) (am, bm []uint64, err error) {
	if err := s.checkCompatible(o); err != nil {
		return nil, nil, err
	}
	size, err := commonSize(s, o, true)
	if err != nil {
		return nil, nil, err
	}
	am, _ = s.restrict(size)
	bm, _ = o.restrict(size)
	return am, bm, nil
}

// CountCommon returns the number of hashes two sketches share once restricted to the coarser size
func (s *Sketch) CountCommon(o *Sketch) (int, error) {
	am, bm, err := s.restrictPair(o)
	if err != nil {
		return 0, err
	}
	return countCommon(am, bm), nil
}

// Containment estimates the fraction of this sketch's k-mers found in the other.
// Both sketches are implicitly restricted to the coarser of their sizes.
func (s *Sketch) Containment(o *Sketch) (float64, error) {
	am, bm, err := s.restrictPair(o)
	if err != nil {
		return 0, err
	}
	if len(am) == 0 {
		return 0, nil
	}
	return float64(countCommon(am, bm)) / float64(len(am)), nil
}

// MaxContainment returns the containment of the smaller sketch in the larger one
func (s *Sketch) MaxContainment(o *Sketch) (float64, error) {
	am, bm, err := s.restrictPair(o)
	if err != nil {
		return 0, err
	}
	smallest := len(am)
	if len(bm) < smallest {
		smallest = len(bm)
	}
	if smallest == 0 {
		return 0, nil
	}
	return float64(countCommon(am, bm)) / float64(smallest), nil
}
