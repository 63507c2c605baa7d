package minhash

import (
	"fmt"
)

// Merge adds the contents of another sketch to this one, summing abundances of shared hashes.
//
// The sketches must hash k-mers identically and agree on abundance tracking. Differing num or
// scaled values are an error unless downsample is set, in which case the merged sketch takes the
// coarser size. The merge is all-or-nothing: on error the sketch is unchanged.
func (s *Sketch) Merge(o *Sketch, downsample bool) error {
	if err := s.checkCompatible(o); err != nil {
		return err
	}
	if s.TrackAbundance() != o.TrackAbundance() {
		return incompatible(MismatchAbundance, s.TrackAbundance(), o.TrackAbundance())
	}
	size, err := commonSize(s, o, downsample)
	if err != nil {
		return err
	}
	am, aa := s.restrict(size)
	bm, ba := o.restrict(size)

	tracked := s.TrackAbundance()
	mins := make([]uint64, 0, len(am)+len(bm))
	var abunds []uint64
	if tracked {
		abunds = make([]uint64, 0, len(am)+len(bm))
	}
	i, j := 0, 0
	for i < len(am) || j < len(bm) {
		switch {
		case j >= len(bm) || (i < len(am) && am[i] < bm[j]):
			mins = append(mins, am[i])
			if tracked {
				abunds = append(abunds, aa[i])
			}
			i++
		case i >= len(am) || bm[j] < am[i]:
			mins = append(mins, bm[j])
			if tracked {
				abunds = append(abunds, ba[j])
			}
			j++
		default:
			mins = append(mins, am[i])
			if tracked {
				abunds = append(abunds, aa[i]+ba[j])
			}
			i++
			j++
		}
	}
	if n, ok := size.(Num); ok && uint64(len(mins)) > uint64(n) {
		mins = mins[:n]
		if tracked {
			abunds = abunds[:n]
		}
	}
	s.mins, s.abunds, s.size = mins, abunds, size
	return nil
}

// Downsample returns a copy of the sketch restricted to a smaller num or a larger scaled.
// Asking for more hashes than the sketch holds is rejected, as is changing the sizing mode.
func (s *Sketch) Downsample(size Size) (*Sketch, error) {
	switch sz := size.(type) {
	case Num:
		if sz == 0 {
			return nil, fmt.Errorf("%w: num must be greater than 0", ErrInvalidParameter)
		}
	case Scaled:
		if sz == 0 {
			return nil, fmt.Errorf("%w: scaled must be greater than 0", ErrInvalidParameter)
		}
	case nil:
		return nil, fmt.Errorf("%w: no sizing mode set", ErrInvalidParameter)
	}
	if !sameKind(s.size, size) {
		return nil, incompatible(MismatchSizing, s.size, size)
	}
	if coarser(s.size, size) != size {
		return nil, fmt.Errorf("%w: %v to %v", ErrUpsizeRejected, s.size, size)
	}
	mins, abunds := s.restrict(size)
	c := s.Clone()
	c.size = size
	c.mins = append(make([]uint64, 0, len(mins)), mins...)
	if abunds != nil {
		c.abunds = append(make([]uint64, 0, len(abunds)), abunds...)
	}
	return c, nil
}
