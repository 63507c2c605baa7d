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

	"github.com/will-rowe/smash/src/minhash"
	"github.com/will-rowe/smash/src/misc"
	"github.com/will-rowe/smash/src/signature"
)

// the command line arguments
var (
	downNum    *uint64 // new num for bottom-n sketches
	downScaled *uint64 // new scaled for FracMinHash sketches
	downOut    *string // file to write the downsampled signatures to
)

// the downsample command (used by cobra)
var downsampleCmd = &cobra.Command{
	Use:   "downsample [flags] [signature files]",
	Short: "Reduce the size of the sketches in some signatures",
	Long: `Reduce the size of the sketches in some signatures.

Sketches can only be made smaller (a lower num or a higher scaled) and a num sketch
can't be converted to a scaled one, or vice versa.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runDownsample(args)
	},
}

// a function to initialise the command line arguments
func init() {
	downNum = downsampleCmd.Flags().Uint64P("num", "n", 0, "new number of hashes for bottom-n sketches")
	downScaled = downsampleCmd.Flags().Uint64P("scaled", "s", 0, "new scaled value for FracMinHash sketches")
	downOut = downsampleCmd.Flags().StringP("outFile", "o", "downsampled.sig", "file to write the downsampled signatures to, - for STDOUT")
	RootCmd.AddCommand(downsampleCmd)
}

// downsampleParamCheck returns the requested sketch size
func downsampleParamCheck() (minhash.Size, error) {
	switch {
	case *downNum != 0 && *downScaled != 0:
		return nil, fmt.Errorf("--num and --scaled are mutually exclusive")
	case *downNum != 0:
		return minhash.Num(*downNum), nil
	case *downScaled != 0:
		return minhash.Scaled(*downScaled), nil
	}
	return nil, fmt.Errorf("one of --num or --scaled is required")
}

// runDownsample is the main function for the downsample sub-command
func runDownsample(files []string) {
	defer startSubcommand("downsample")()
	start := time.Now()
	size, err := downsampleParamCheck()
	misc.ErrorCheck(err)
	log.Printf("\tnew sketch size: %v", size)
	log.Printf("loading signatures...")
	sigs, err := loadSignatures(files)
	misc.ErrorCheck(err)

	log.Printf("downsampling signatures...")
	downsampled := make([]*signature.Signature, len(sigs))
	for i, sig := range sigs {
		if downsampled[i], err = sig.Downsample(size); err != nil {
			misc.ErrorCheck(fmt.Errorf("could not downsample %v: %w", sig.DisplayName(), err))
		}
	}
	misc.ErrorCheck(saveSignatures(*downOut, downsampled))
	log.Printf("finished in %s", time.Since(start))
}
