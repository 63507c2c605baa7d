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
	"time"

	"github.com/spf13/cobra"

	"github.com/will-rowe/smash/src/misc"
	"github.com/will-rowe/smash/src/signature"
)

// the command line arguments
var (
	mergedName *string // name for the merged signature
	mergeDown  *bool   // downsample sketches of differing sizes
	mergeOut   *string // file to write the merged signature to
)

// the merge command (used by cobra)
var mergeCmd = &cobra.Command{
	Use:   "merge [flags] [signature files]",
	Short: "Merge signatures into one",
	Long: `Merge signatures into one.

Every signature must hold sketches with the same parameters. Sketches of differing num or
scaled are only merged with --downsample, in which case the result takes the coarser size.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMerge(args)
	},
}

// a function to initialise the command line arguments
func init() {
	mergedName = mergeCmd.Flags().String("name", "", "name for the merged signature")
	mergeDown = mergeCmd.Flags().Bool("downsample", false, "downsample sketches of differing num or scaled before merging")
	mergeOut = mergeCmd.Flags().StringP("outFile", "o", "merged.sig", "file to write the merged signature to, - for STDOUT")
	RootCmd.AddCommand(mergeCmd)
}

// runMerge is the main function for the merge sub-command
func runMerge(files []string) {
	defer startSubcommand("merge")()
	start := time.Now()
	log.Printf("loading signatures...")
	sigs, err := loadSignatures(files)
	misc.ErrorCheck(err)

	log.Printf("merging signatures...")
	merged := sigs[0].Clone()
	for _, sig := range sigs[1:] {
		if err := merged.Merge(sig, *mergeDown); err != nil {
			misc.ErrorCheck(fmt.Errorf("could not merge %v: %w", sig.DisplayName(), err))
		}
	}
	merged.Name = *mergedName
	merged.Filename = ""
	log.Printf("\tmerged %d signatures", len(sigs))
	misc.ErrorCheck(saveSignatures(*mergeOut, []*signature.Signature{merged}))
	log.Printf("finished in %s", time.Since(start))
}
