package minhash

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/will-rowe/smash/src/alphabet"
	"github.com/will-rowe/smash/src/kmer"
	"github.com/will-rowe/smash/src/misc"
)

// randomGenome is a helper to generate a reproducible random DNA sequence
func randomGenome(seed int64, length int) []byte {
	r := rand.New(rand.NewSource(seed))
	seq := make([]byte, length)
	for i := range seq {
		seq[i] = "ACGT"[r.Intn(4)]
	}
	return seq
}

// corrupt is a helper that replaces every 100th base (from offset 50) with an N
func corrupt(seq []byte) []byte {
	c := append([]byte(nil), seq...)
	for i := 50; i < len(c); i += 100 {
		c[i] = 'N'
	}
	return c
}

// revComp is a helper to get the reverse complement of a clean sequence
func revComp(seq []byte) []byte {
	return kmer.ReverseComplement(nil, bytes.ToUpper(seq))
}

// referenceHashes hashes the canonical form of every clean k-mer the slow way
func referenceHashes(seq []byte, k int) []uint64 {
	hashes := []uint64{}
	upper := bytes.ToUpper(seq)
	for i := 0; i+k <= len(upper); i++ {
		window := upper[i : i+k]
		if alphabet.Nucleotides.FirstInvalid(window) >= 0 {
			continue
		}
		canonical := kmer.CanonicalString(string(window))
		hashes = append(hashes, HashMurmur64([]byte(canonical), DefaultSeed))
	}
	return hashes
}

// translateFrame is a helper returning the forward frame 0 translation of a sequence
func translateFrame(seq []byte) []byte {
	aa := []byte{}
	for i := 0; i+3 <= len(seq); i += 3 {
		aa = append(aa, alphabet.TranslateCodon(seq[i], seq[i+1], seq[i+2]))
	}
	return aa
}

// isSubset reports whether every value of a (sorted) is in b (sorted)
func isSubset(a, b []uint64) bool {
	return countCommon(a, b) == len(a)
}

// sketchOf is a helper that sketches a sequence and fails the test on error
func sketchOf(t testing.TB, p Params, seq []byte, force bool) *Sketch {
	t.Helper()
	s := newSketch(t, p)
	if err := s.AddSequence(seq, force); err != nil {
		t.Fatal(err)
	}
	return s
}

// a clean genome sketched with defaults holds the bottom 500 canonical hashes
func TestAddSequenceNum(t *testing.T) {
	genome := randomGenome(1, 10000)
	s := sketchOf(t, dnaParams(sketchSize), genome, false)
	checkInvariants(t, s)
	expected := bottomN(referenceHashes(genome, int(kmerSize)), int(sketchSize))
	if len(expected) != int(sketchSize) {
		t.Fatalf("expected a saturated sketch, reference only holds %d hashes", len(expected))
	}
	if !misc.Uint64SliceEqual(s.Mins(), expected) {
		t.Fatal("sketch does not hold the smallest canonical k-mer hashes")
	}
}

// sequences spanning several ingestion chunks match the reference
func TestAddSequenceChunked(t *testing.T) {
	genome := randomGenome(2, 3*chunkWindows+1000)
	size := Scaled(50)
	s := sketchOf(t, dnaParams(size), genome, false)
	checkInvariants(t, s)
	expected := []uint64{}
	for _, h := range referenceHashes(genome, int(kmerSize)) {
		if h < size.MaxHash() {
			expected = append(expected, h)
		}
	}
	if !misc.Uint64SliceEqual(s.Mins(), bottomN(expected, len(expected))) {
		t.Fatal("chunked ingestion lost or invented k-mers")
	}
}

// an invalid symbol without force fails the call and leaves the sketch untouched
func TestAddSequenceInvalid(t *testing.T) {
	s := newSketch(t, dnaParams(sketchSize))
	err := s.AddSequence(corrupt(randomGenome(1, 10000)), false)
	if !errors.Is(err, ErrInvalidSequence) {
		t.Fatalf("expected ErrInvalidSequence, got %v", err)
	}
	var seqErr *InvalidSequenceError
	if !errors.As(err, &seqErr) || seqErr.Offset != 50 || seqErr.Symbol != 'N' {
		t.Fatalf("error does not locate the first invalid symbol: %v", err)
	}
	if !s.IsEmpty() {
		t.Fatal("a failed call must not add any hashes")
	}

	// a sketch with content is also left as it was
	s.AddHash(1)
	if err := s.AddSequence([]byte("ACGTACGTACGTACGTACGTACGTX"), false); err == nil {
		t.Fatal("expected an error")
	}
	if !misc.Uint64SliceEqual(s.Mins(), []uint64{1}) {
		t.Fatal("a failed call changed the sketch")
	}
}

// with force, windows holding invalid symbols are skipped and the rest are kept
func TestAddSequenceForce(t *testing.T) {
	genome := randomGenome(1, 10000)
	corrupted := corrupt(genome)
	for _, size := range []Size{Scaled(10), Num(20000)} {
		clean := sketchOf(t, dnaParams(size), genome, false)
		forced := sketchOf(t, dnaParams(size), corrupted, true)
		checkInvariants(t, forced)
		if forced.IsEmpty() {
			t.Fatalf("%v: forced sketch is empty", size)
		}
		if !isSubset(forced.Mins(), clean.Mins()) {
			t.Fatalf("%v: forced sketch holds hashes not found in the clean sketch", size)
		}
	}

	// every clean window survives and no window holding an N does
	all := sketchOf(t, dnaParams(Scaled(1)), corrupted, true)
	expected := bottomN(referenceHashes(corrupted, int(kmerSize)), len(corrupted))
	if !misc.Uint64SliceEqual(all.Mins(), expected) {
		t.Fatal("forced sketch does not match the clean windows of the corrupted sequence")
	}
}

func TestShortSequence(t *testing.T) {
	s := sketchOf(t, dnaParams(sketchSize), []byte("ACGT"), false)
	if !s.IsEmpty() {
		t.Fatal("a sequence shorter than k holds no k-mers")
	}
	if err := s.AddSequence(nil, false); err != nil {
		t.Fatal(err)
	}
	if err := s.AddSequence([]byte("ACNT"), false); !errors.Is(err, ErrInvalidSequence) {
		t.Fatal("short sequences are still validated")
	}
}

func TestCaseInvariance(t *testing.T) {
	genome := randomGenome(3, 3000)
	lower := bytes.ToLower(genome)
	for _, mol := range []alphabet.Molecule{alphabet.DNA, alphabet.Protein, alphabet.Dayhoff, alphabet.HP} {
		p := dnaParams(Scaled(1))
		p.Molecule = mol
		p.TrackAbundance = true
		if mol.Translated() {
			p.KSize = 7
		}
		upper := sketchOf(t, p, genome, false)
		low := sketchOf(t, p, lower, false)
		if upper.IsEmpty() || !upper.Equal(low) {
			t.Fatalf("%v: lowercase input gave a different sketch", mol)
		}
	}

	// uracil is read as thymine
	rna := bytes.Replace(genome, []byte("T"), []byte("U"), -1)
	if !sketchOf(t, dnaParams(sketchSize), rna, false).Equal(sketchOf(t, dnaParams(sketchSize), genome, false)) {
		t.Fatal("RNA input gave a different sketch")
	}
}

func TestStrandIndependence(t *testing.T) {
	genome := randomGenome(4, 5000)
	rc := revComp(genome)
	for _, mol := range []alphabet.Molecule{alphabet.DNA, alphabet.Protein, alphabet.Dayhoff, alphabet.HP} {
		p := dnaParams(Scaled(1))
		p.Molecule = mol
		p.TrackAbundance = true
		if mol.Translated() {
			p.KSize = 10
		}
		if !sketchOf(t, p, genome, false).Equal(sketchOf(t, p, rc, false)) {
			t.Fatalf("%v: reverse complement gave a different sketch", mol)
		}
	}
}

func TestSingleStrand(t *testing.T) {
	genome := randomGenome(5, 2000)
	p := dnaParams(Scaled(1))
	p.SingleStrand = true
	s := sketchOf(t, p, genome, false)
	expected := []uint64{}
	for i := 0; i+int(kmerSize) <= len(genome); i++ {
		expected = append(expected, HashMurmur64(genome[i:i+int(kmerSize)], DefaultSeed))
	}
	if !misc.Uint64SliceEqual(s.Mins(), bottomN(expected, len(expected))) {
		t.Fatal("single stranded sketch should hash forward k-mers as they are")
	}
	if s.Equal(sketchOf(t, p, revComp(genome), false)) {
		t.Fatal("single stranded sketches should depend on the strand")
	}

	// translated single stranded sketches only read the forward frames
	p.Molecule, p.KSize = alphabet.Protein, 7
	p.SingleStrand = false
	both := sketchOf(t, p, genome, false)
	p.SingleStrand = true
	forward := sketchOf(t, p, genome, false)
	if forward.Len() >= both.Len() || !isSubset(forward.Mins(), both.Mins()) {
		t.Fatal("forward frames should be a strict subset of all six frames")
	}
}

func TestTranslatedAgainstProtein(t *testing.T) {
	genome := randomGenome(6, 3000)
	frame0 := translateFrame(genome)
	for _, mol := range []alphabet.Molecule{alphabet.Protein, alphabet.Dayhoff, alphabet.HP} {
		p := dnaParams(Scaled(1))
		p.Molecule, p.KSize = mol, 7
		translated := sketchOf(t, p, genome, false)
		checkInvariants(t, translated)

		// the protein sketch of frame 0 skips windows with stops, everything else is shared
		prot := newSketch(t, p)
		if err := prot.AddProtein(frame0, true); err != nil {
			t.Fatal(err)
		}
		if prot.IsEmpty() || !isSubset(prot.Mins(), translated.Mins()) {
			t.Fatalf("%v: protein k-mers of frame 0 are missing from the translated sketch", mol)
		}
	}
}

func TestAddProtein(t *testing.T) {
	p := dnaParams(Scaled(1))
	p.Molecule, p.KSize = alphabet.Protein, 3
	s := newSketch(t, p)
	if err := s.AddProtein([]byte("mkvll"), false); err != nil {
		t.Fatal(err)
	}
	expected := bottomN([]uint64{
		HashMurmur64([]byte("MKV"), DefaultSeed),
		HashMurmur64([]byte("KVL"), DefaultSeed),
		HashMurmur64([]byte("VLL"), DefaultSeed),
	}, 3)
	if !misc.Uint64SliceEqual(s.Mins(), expected) {
		t.Fatal("unexpected protein k-mer hashes")
	}

	err := s.AddProtein([]byte("MKV*LL"), false)
	var seqErr *InvalidSequenceError
	if !errors.As(err, &seqErr) || seqErr.Offset != 3 {
		t.Fatalf("stops are invalid in protein input: %v", err)
	}
	if s.Len() != 3 {
		t.Fatal("a failed call changed the sketch")
	}
	if err := s.AddProtein([]byte("XMKVXLL"), true); err != nil || s.Len() != 3 {
		t.Fatal("forced protein input should skip windows holding invalid residues")
	}

	// dayhoff sketches reduce protein input first
	p.Molecule = alphabet.Dayhoff
	d := newSketch(t, p)
	if err := d.AddProtein([]byte("CAD"), false); err != nil {
		t.Fatal(err)
	}
	if !misc.Uint64SliceEqual(d.Mins(), []uint64{HashMurmur64([]byte("abc"), DefaultSeed)}) {
		t.Fatal("dayhoff sketch did not hash the reduced k-mer")
	}

	dna := newSketch(t, dnaParams(sketchSize))
	if err := dna.AddProtein([]byte("MKVLL"), false); !errors.Is(err, ErrInvalidParameter) {
		t.Fatal("DNA sketches should reject protein input")
	}
}

func TestSeedChangesHashes(t *testing.T) {
	genome := randomGenome(7, 2000)
	a := sketchOf(t, dnaParams(sketchSize), genome, false)
	p := dnaParams(sketchSize)
	p.Seed = 7
	b := sketchOf(t, p, genome, false)
	if misc.Uint64SliceEqual(a.Mins(), b.Mins()) {
		t.Fatal("different seeds should give different hashes")
	}
}

func TestNtHash(t *testing.T) {
	genome := randomGenome(8, 10000)
	p := dnaParams(Scaled(10))
	p.HashFunction = NtHash
	a := sketchOf(t, p, genome, false)
	checkInvariants(t, a)
	if a.IsEmpty() {
		t.Fatal("ntHash sketch is empty")
	}
	if !a.Equal(sketchOf(t, p, bytes.ToLower(genome), false)) {
		t.Fatal("ntHash sketches should be case insensitive")
	}

	forced := sketchOf(t, p, corrupt(genome), true)
	if forced.IsEmpty() || !isSubset(forced.Mins(), a.Mins()) {
		t.Fatal("forced ntHash sketch should be a subset of the clean one")
	}

	p.Seed = 7
	if misc.Uint64SliceEqual(sketchOf(t, p, genome, false).Mins(), a.Mins()) {
		t.Fatal("different seeds should give different ntHash values")
	}

	murmur := sketchOf(t, dnaParams(Scaled(10)), genome, false)
	if _, err := a.Similarity(murmur, false, false); !errors.Is(err, ErrIncompatibleSketch) {
		t.Fatal("sketches built with different hash functions should not be compared")
	}
}

func BenchmarkAddSequence(b *testing.B) {
	genome := randomGenome(9, 100000)
	s, _ := New(dnaParams(sketchSize))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.AddSequence(genome, false); err != nil {
			b.Fatal(err)
		}
	}
}
