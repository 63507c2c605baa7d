package minhash

import (
	"fmt"

	"github.com/will-rowe/smash/src/alphabet"
	"github.com/will-rowe/smash/src/kmer"
)

// chunkWindows is the number of windows normalised per pass, bounding the scratch memory used during ingestion
const chunkWindows = 1 << 16

// AddSequence decomposes a nucleotide sequence to k-mers, hashes them and adds them to the sketch.
// Translated molecule types hash the amino acid k-mers of every reading frame.
//
// If force is false, any invalid symbol fails the call with an InvalidSequenceError before anything
// is added. If force is true, windows holding invalid symbols are skipped.
func (s *Sketch) AddSequence(seq []byte, force bool) error {
	if !force {
		if i := alphabet.Nucleotides.FirstInvalid(seq); i >= 0 {
			return &InvalidSequenceError{Offset: i, Symbol: seq[i], Molecule: s.molecule}
		}
	}
	if s.molecule.Translated() {
		s.addTranslated(seq)
		return nil
	}
	return s.addNucleotides(seq)
}

// AddProtein adds the k-mers of an amino acid sequence to a protein, dayhoff or hp sketch.
// The force policy is the same as for AddSequence.
func (s *Sketch) AddProtein(seq []byte, force bool) error {
	if !s.molecule.Translated() {
		return fmt.Errorf("%w: cannot add an amino acid sequence to a %v sketch", ErrInvalidParameter, s.molecule)
	}
	if !force {
		if i := alphabet.AminoAcids.FirstInvalid(seq); i >= 0 {
			return &InvalidSequenceError{Offset: i, Symbol: seq[i], Molecule: s.molecule}
		}
	}
	k := int(s.ksize)
	for start := 0; start+k <= len(seq); start += chunkWindows {
		end := min(start+chunkWindows+k-1, len(seq))
		s.aa = s.aa[:0]
		for _, b := range seq[start:end] {
			s.aa = append(s.aa, alphabet.Reduce(s.molecule, alphabet.AminoAcids[b]))
		}
		s.addSymbols(s.aa)
	}
	return nil
}

// addNucleotides hashes DNA k-mers, canonicalising them unless the sketch is single stranded
func (s *Sketch) addNucleotides(seq []byte) error {
	k := int(s.ksize)
	for start := 0; start+k <= len(seq); start += chunkWindows {
		end := min(start+chunkWindows+k-1, len(seq))
		s.fwd = kmer.Normalize(s.fwd[:0], seq[start:end], alphabet.Nucleotides)

		if s.hashFunc == NtHash {
			if err := s.addRuns(s.fwd); err != nil {
				return err
			}
			continue
		}

		if !s.singleStrand {
			s.rev = kmer.ReverseComplement(s.rev[:0], s.fwd)
		}
		n := len(s.fwd)
		var ex kmer.Extractor
		ex.Reset(s.fwd, k, alphabet.Nucleotides)
		for ex.Next() {
			if !ex.Valid() {
				continue
			}
			w := ex.Kmer()
			if !s.singleStrand {
				i := ex.Offset()
				w = kmer.Canonical(w, s.rev[n-i-k:n-i])
			}
			s.AddHash(HashMurmur64(w, s.seed))
		}
	}
	return nil
}

// addRuns splits a normalised chunk into maximal runs of valid bases and rolls ntHash over each
func (s *Sketch) addRuns(buf []byte) error {
	k := int(s.ksize)
	runStart := -1
	for i := 0; i <= len(buf); i++ {
		if i < len(buf) && alphabet.Nucleotides.Valid(buf[i]) {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 && i-runStart >= k {
			if err := s.hashRun(buf[runStart:i]); err != nil {
				return err
			}
		}
		runStart = -1
	}
	return nil
}

// addTranslated hashes the reduced amino acid k-mers of the three forward frames, plus the
// three reverse complement frames unless the sketch is single stranded
func (s *Sketch) addTranslated(seq []byte) {
	k := int(s.ksize)
	strands := 2
	if s.singleStrand {
		strands = 1
	}
	for strand := 0; strand < strands; strand++ {
		for frame := 0; frame < 3 && frame < len(seq); frame++ {
			codons := (len(seq) - frame) / 3
			for c0 := 0; c0+k <= codons; c0 += chunkWindows {
				c1 := min(c0+chunkWindows+k-1, codons)
				s.aa = s.aa[:0]
				for c := c0; c < c1; c++ {
					s.aa = append(s.aa, alphabet.Reduce(s.molecule, codonAt(seq, frame, c, strand == 1)))
				}
				s.addSymbols(s.aa)
			}
		}
	}
}

// addSymbols hashes every valid k-mer of an already translated and reduced buffer
func (s *Sketch) addSymbols(buf []byte) {
	var ex kmer.Extractor
	ex.Reset(buf, int(s.ksize), alphabet.OutputTable(s.molecule))
	for ex.Next() {
		if ex.Valid() {
			s.AddHash(HashMurmur64(ex.Kmer(), s.seed))
		}
	}
}

// codonAt translates codon c of a reading frame, on the reverse complement strand if reverse is set
func codonAt(seq []byte, frame, c int, reverse bool) byte {
	j := frame + 3*c
	if !reverse {
		return alphabet.TranslateCodon(seq[j], seq[j+1], seq[j+2])
	}
	n := len(seq)
	return alphabet.TranslateCodon(
		alphabet.Complement(seq[n-1-j]),
		alphabet.Complement(seq[n-2-j]),
		alphabet.Complement(seq[n-3-j]),
	)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
