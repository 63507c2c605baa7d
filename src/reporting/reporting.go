// Package reporting compares collections of signatures and writes out the results.
package reporting

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/will-rowe/smash/src/alphabet"
	"github.com/will-rowe/smash/src/minhash"
	"github.com/will-rowe/smash/src/signature"
)

// Mode selects the measure placed in each cell of a comparison matrix
type Mode int

const (
	// Similarity is the (symmetric) jaccard or angular similarity
	Similarity Mode = iota
	// Containment is the fraction of the row sketch found in the column sketch
	Containment
)

// String returns the name of the mode
func (m Mode) String() string {
	if m == Containment {
		return "containment"
	}
	return "similarity"
}

// Matrix holds pairwise comparisons between signatures, indexed the same as Labels
type Matrix struct {
	Labels []string
	Values [][]float64
}

// cell is a pair of sketch indices waiting to be compared
type cell struct {
	i, j int
}

// CompareMatrix compares every pair of signatures using the sketch at the requested k-mer size and molecule.
// The comparisons are shared out between numProc goroutines.
func CompareMatrix(sigs []*signature.Signature, k uint, molecule alphabet.Molecule, mode Mode, downsample bool, numProc int) (*Matrix, error) {
	if len(sigs) == 0 {
		return nil, fmt.Errorf("no signatures to compare")
	}
	if numProc < 1 {
		numProc = 1
	}

	// select the sketch from each signature
	sketches := make([]*minhash.Sketch, len(sigs))
	matrix := &Matrix{
		Labels: make([]string, len(sigs)),
		Values: make([][]float64, len(sigs)),
	}
	for i, sig := range sigs {
		sketches[i] = sig.Select(k, molecule)
		if sketches[i] == nil {
			return nil, fmt.Errorf("%w: signature %v has no k=%d %v sketch", minhash.ErrIncompatibleSketch, sig.DisplayName(), k, molecule)
		}
		matrix.Labels[i] = sig.DisplayName()
		matrix.Values[i] = make([]float64, len(sigs))
	}

	// similarity is symmetric so only the upper triangle is computed for it
	cells := make(chan cell, numProc)
	go func() {
		defer close(cells)
		for i := range sketches {
			for j := range sketches {
				if mode == Similarity && j < i {
					continue
				}
				cells <- cell{i, j}
			}
		}
	}()

	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error
	for w := 0; w < numProc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range cells {
				value, err := compare(sketches[c.i], sketches[c.j], mode, downsample)
				if err != nil {
					once.Do(func() {
						firstErr = fmt.Errorf("comparing %v with %v: %w", matrix.Labels[c.i], matrix.Labels[c.j], err)
					})
					continue
				}
				matrix.Values[c.i][c.j] = value
				if mode == Similarity {
					matrix.Values[c.j][c.i] = value
				}
			}
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	log.Printf("\tcompared %d signatures (k=%d, %v, %v)", len(sigs), k, molecule, mode)
	return matrix, nil
}

// compare returns a single cell value, abundances are only used when both sketches carry them
func compare(a, b *minhash.Sketch, mode Mode, downsample bool) (float64, error) {
	if mode == Containment {
		return a.Containment(b)
	}
	ignoreAbundance := !(a.TrackAbundance() && b.TrackAbundance())
	return a.Similarity(b, downsample, ignoreAbundance)
}

// WriteTSV writes the matrix as tab separated values, with a header row and the label in the first column
func (m *Matrix) WriteTSV(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("name")
	for _, label := range m.Labels {
		sb.WriteByte('\t')
		sb.WriteString(label)
	}
	sb.WriteByte('\n')
	for i, row := range m.Values {
		sb.WriteString(m.Labels[i])
		for _, value := range row {
			sb.WriteByte('\t')
			sb.WriteString(strconv.FormatFloat(value, 'f', 6, 64))
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// OffDiagonal returns every value that doesn't compare a signature with itself
func (m *Matrix) OffDiagonal() []float64 {
	values := make([]float64, 0, len(m.Values)*len(m.Values))
	for i, row := range m.Values {
		for j, value := range row {
			if i != j {
				values = append(values, value)
			}
		}
	}
	return values
}

// Histogram plots the distribution of the off-diagonal values and saves it to path (the extension sets the image format)
func (m *Matrix) Histogram(path string, bins int) error {
	values := m.OffDiagonal()
	if len(values) == 0 {
		return fmt.Errorf("need at least two signatures to plot a histogram")
	}
	if bins < 1 {
		bins = 20
	}
	histPlot, err := plot.New()
	if err != nil {
		return err
	}
	histPlot.Title.Text = "pairwise comparisons"
	histPlot.X.Label.Text = "score"
	histPlot.Y.Label.Text = "number of signature pairs"
	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return err
	}
	histPlot.Add(hist)
	return histPlot.Save(6*vg.Inch, 4*vg.Inch, path)
}
