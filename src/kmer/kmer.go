// Package kmer extracts fixed-length windows from symbol sequences and picks strand-independent
// representatives of nucleotide k-mers.
package kmer

import (
	"bytes"

	"github.com/will-rowe/smash/src/alphabet"
)

// Extractor lazily walks every k-length window of a sequence, one per starting offset.
// A window holding any symbol rejected by the table is still visited but reported invalid.
// The zero value yields nothing; Reset makes it ready (and restarts it on the same buffer).
type Extractor struct {
	seq     []byte
	k       int
	table   *alphabet.Table
	next    int // start offset of the next window
	scanned int // symbols classified so far
	bad     int // offset of the most recent invalid symbol
	valid   bool
}

// Reset points the extractor at a new sequence and window length
func (e *Extractor) Reset(seq []byte, k int, table *alphabet.Table) {
	e.seq = seq
	e.k = k
	e.table = table
	e.next = 0
	e.scanned = 0
	e.bad = -1
	e.valid = false
}

// Next moves to the next window, returning false once the sequence is exhausted
func (e *Extractor) Next() bool {
	if e.k <= 0 || e.next+e.k > len(e.seq) {
		return false
	}
	end := e.next + e.k
	for ; e.scanned < end; e.scanned++ {
		if !e.table.Valid(e.seq[e.scanned]) {
			e.bad = e.scanned
		}
	}
	e.valid = e.bad < e.next
	e.next++
	return true
}

// Offset returns the start of the current window
func (e *Extractor) Offset() int {
	return e.next - 1
}

// Kmer returns the current window, the slice aliases the sequence
func (e *Extractor) Kmer() []byte {
	start := e.next - 1
	return e.seq[start : start+e.k]
}

// Valid reports whether every symbol of the current window is accepted by the table
func (e *Extractor) Valid() bool {
	return e.valid
}

// Count returns the number of windows a sequence of length n holds for window length k
func Count(n, k int) int {
	if k <= 0 || n < k {
		return 0
	}
	return n - k + 1
}

// Normalize appends the normalised form of src to dst, invalid symbols are copied unchanged
func Normalize(dst, src []byte, table *alphabet.Table) []byte {
	for _, b := range src {
		dst = append(dst, table.Normalize(b))
	}
	return dst
}

// ReverseComplement appends the reverse complement of src to dst
func ReverseComplement(dst, src []byte) []byte {
	for i := len(src) - 1; i >= 0; i-- {
		dst = append(dst, alphabet.Complement(src[i]))
	}
	return dst
}

// Canonical returns the lexicographically smaller of a normalised k-mer and its reverse complement
func Canonical(kmer, revComp []byte) []byte {
	if bytes.Compare(revComp, kmer) < 0 {
		return revComp
	}
	return kmer
}

// CanonicalString is a convenience wrapper around Canonical for one-off k-mers of any case
func CanonicalString(kmer string) string {
	fwd := Normalize(make([]byte, 0, len(kmer)), []byte(kmer), alphabet.Nucleotides)
	rc := ReverseComplement(make([]byte, 0, len(kmer)), fwd)
	return string(Canonical(fwd, rc))
}
