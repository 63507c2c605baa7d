// Copyright © 2017 Will Rowe <will.rowe@stfc.ac.uk>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/will-rowe/smash/src/alphabet"
	"github.com/will-rowe/smash/src/misc"
	"github.com/will-rowe/smash/src/reporting"
)

// the command line arguments
var (
	compareK        *uint   // k-mer size of the sketches to compare
	compareMolecule *string // molecule type of the sketches to compare
	containment     *bool   // report containment instead of similarity
	compareDown     *bool   // downsample sketches of differing sizes
	compareOut      *string // file to write the matrix to
	histogram       *string // file to plot a histogram of the comparisons to
	histogramBins   *int    // number of histogram bins
)

// the compare command (used by cobra)
var compareCmd = &cobra.Command{
	Use:   "compare [flags] [signature files]",
	Short: "Compare signatures and write a similarity (or containment) matrix",
	Long: `Compare signatures and write a similarity (or containment) matrix.

Every signature must hold a sketch with the requested k-mer size and molecule type. Similarity
is abundance weighted when all the sketches track abundance. For containment, each row gives the
fraction of that signature found in each column signature.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCompare(args)
	},
}

// a function to initialise the command line arguments
func init() {
	compareK = compareCmd.Flags().UintP("kmerSize", "k", 31, "k-mer size of the sketches to compare")
	compareMolecule = compareCmd.Flags().StringP("molecule", "m", "DNA", "molecule type of the sketches to compare")
	containment = compareCmd.Flags().Bool("containment", false, "report containment instead of similarity")
	compareDown = compareCmd.Flags().Bool("downsample", false, "downsample sketches of differing num or scaled before comparing")
	compareOut = compareCmd.Flags().StringP("outFile", "o", "-", "file to write the matrix to (tab separated), - for STDOUT")
	histogram = compareCmd.Flags().String("histogram", "", "plot a histogram of the pairwise comparisons to this file (.png, .svg or .pdf)")
	histogramBins = compareCmd.Flags().Int("bins", 20, "number of bins for the histogram")
	RootCmd.AddCommand(compareCmd)
}

// runCompare is the main function for the compare sub-command
func runCompare(files []string) {
	defer startSubcommand("compare")()
	start := time.Now()
	molecule, err := alphabet.ParseMolecule(*compareMolecule)
	misc.ErrorCheck(err)
	mode := reporting.Similarity
	if *containment {
		mode = reporting.Containment
	}
	log.Printf("loading signatures...")
	sigs, err := loadSignatures(files)
	misc.ErrorCheck(err)

	log.Printf("comparing signatures...")
	matrix, err := reporting.CompareMatrix(sigs, *compareK, molecule, mode, *compareDown, *proc)
	misc.ErrorCheck(err)
	out := os.Stdout
	if *compareOut != "-" {
		out, err = os.Create(*compareOut)
		misc.ErrorCheck(err)
		defer out.Close()
	}
	misc.ErrorCheck(matrix.WriteTSV(out))
	if *histogram != "" {
		if len(sigs) < 2 {
			misc.ErrorCheck(fmt.Errorf("need at least two signatures to plot a histogram"))
		}
		misc.ErrorCheck(matrix.Histogram(*histogram, *histogramBins))
		log.Printf("\tsaved histogram to %v", *histogram)
	}
	log.Printf("finished in %s", time.Since(start))
}
