package reporting

import (
	"bytes"
	"errors"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/will-rowe/smash/src/alphabet"
	"github.com/will-rowe/smash/src/minhash"
	"github.com/will-rowe/smash/src/signature"
)

func randomGenome(seed int64, length int) []byte {
	r := rand.New(rand.NewSource(seed))
	seq := make([]byte, length)
	for i := range seq {
		seq[i] = "ACGT"[r.Intn(4)]
	}
	return seq
}

// testSignatures returns three signatures, the second two overlapping the first by differing amounts
func testSignatures(t *testing.T) []*signature.Signature {
	opts := signature.DefaultOptions()
	opts.Num = 0
	opts.Scaled = 10
	ps, err := signature.NewParameterSet(opts)
	if err != nil {
		t.Fatal(err)
	}
	genome := randomGenome(7, 30000)
	records := map[string][]byte{
		"full":    genome,
		"half":    genome[:15000],
		"quarter": append(append([]byte(nil), genome[:7500]...), randomGenome(8, 7500)...),
	}
	sigs := []*signature.Signature{}
	for _, name := range []string{"full", "half", "quarter"} {
		sig, err := signature.New(name, "", ps)
		if err != nil {
			t.Fatal(err)
		}
		if err := sig.AddSequence(records[name], false); err != nil {
			t.Fatal(err)
		}
		sigs = append(sigs, sig)
	}
	return sigs
}

func TestSimilarityMatrix(t *testing.T) {
	sigs := testSignatures(t)
	matrix, err := CompareMatrix(sigs, 31, alphabet.DNA, Similarity, false, 2)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(matrix.Labels, ",") != "full,half,quarter" {
		t.Fatalf("unexpected labels: %v", matrix.Labels)
	}
	for i := range matrix.Values {
		if matrix.Values[i][i] != 1.0 {
			t.Fatalf("self similarity of %v is %f", matrix.Labels[i], matrix.Values[i][i])
		}
		for j := range matrix.Values {
			if matrix.Values[i][j] != matrix.Values[j][i] {
				t.Fatal("similarity matrix is not symmetric")
			}
		}
	}
	if !(matrix.Values[0][1] > matrix.Values[0][2]) {
		t.Fatalf("half should be more similar to full than quarter: %v", matrix.Values[0])
	}

	// matches a direct comparison
	direct, err := sigs[0].Select(31, alphabet.DNA).Similarity(sigs[2].Select(31, alphabet.DNA), false, true)
	if err != nil {
		t.Fatal(err)
	}
	if matrix.Values[0][2] != direct {
		t.Fatalf("matrix value %f differs from direct comparison %f", matrix.Values[0][2], direct)
	}
}

func TestContainmentMatrix(t *testing.T) {
	sigs := testSignatures(t)
	matrix, err := CompareMatrix(sigs, 21, alphabet.DNA, Containment, false, 3)
	if err != nil {
		t.Fatal(err)
	}

	// half is a subsequence of full
	if matrix.Values[1][0] != 1.0 {
		t.Fatalf("half should be contained in full, got %f", matrix.Values[1][0])
	}
	if matrix.Values[0][1] >= 1.0 {
		t.Fatalf("full should not be contained in half, got %f", matrix.Values[0][1])
	}
}

func TestCompareMatrixErrors(t *testing.T) {
	if _, err := CompareMatrix(nil, 21, alphabet.DNA, Similarity, false, 1); err == nil {
		t.Fatal("expected an error for no signatures")
	}
	sigs := testSignatures(t)
	if _, err := CompareMatrix(sigs, 99, alphabet.DNA, Similarity, false, 1); !errors.Is(err, minhash.ErrIncompatibleSketch) {
		t.Fatalf("expected incompatible sketch error for missing k-mer size, got %v", err)
	}

	// different scales can only be compared when downsampling
	coarse, err := sigs[1].Downsample(minhash.Scaled(100))
	if err != nil {
		t.Fatal(err)
	}
	sigs[1] = coarse
	if _, err := CompareMatrix(sigs, 21, alphabet.DNA, Similarity, false, 2); !errors.Is(err, minhash.ErrIncompatibleSketch) {
		t.Fatalf("expected incompatible sketch error for different scales, got %v", err)
	}
	if _, err := CompareMatrix(sigs, 21, alphabet.DNA, Similarity, true, 2); err != nil {
		t.Fatal(err)
	}
}

func TestWriteTSV(t *testing.T) {
	matrix := &Matrix{
		Labels: []string{"a", "b"},
		Values: [][]float64{{1, 0.25}, {0.25, 1}},
	}
	var buf bytes.Buffer
	if err := matrix.WriteTSV(&buf); err != nil {
		t.Fatal(err)
	}
	expected := "name\ta\tb\na\t1.000000\t0.250000\nb\t0.250000\t1.000000\n"
	if buf.String() != expected {
		t.Fatalf("unexpected TSV:\n%v", buf.String())
	}
	if len(matrix.OffDiagonal()) != 2 {
		t.Fatal("expected 2 off-diagonal values")
	}
}

func TestHistogram(t *testing.T) {
	dir, err := ioutil.TempDir("", "smash-reporting")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	matrix, err := CompareMatrix(testSignatures(t), 21, alphabet.DNA, Containment, false, 2)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "hist.png")
	if err := matrix.Histogram(path, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	single := &Matrix{Labels: []string{"a"}, Values: [][]float64{{1}}}
	if err := single.Histogram(path, 10); err == nil {
		t.Fatal("expected an error when there is nothing to plot")
	}
}
