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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/will-rowe/smash/src/misc"
	"github.com/will-rowe/smash/src/signature"
)

// the describe command (used by cobra)
var describeCmd = &cobra.Command{
	Use:   "describe [signature files]",
	Short: "Print the parameters and size of every sketch in some signatures",
	Long:  `Print the parameters and size of every sketch in some signatures`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		defer startSubcommand("describe")()
		sigs, err := loadSignatures(args)
		misc.ErrorCheck(err)
		misc.ErrorCheck(describe(os.Stdout, sigs))
	},
}

// a function to initialise the command line arguments
func init() {
	RootCmd.AddCommand(describeCmd)
}

// describe writes one block per signature, with a line for each of its sketches
func describe(w io.Writer, sigs []*signature.Signature) error {
	for _, sig := range sigs {
		if _, err := fmt.Fprintf(w, "---\nsignature: %v\nfilename: %v\nsketches: %d\n", sig.DisplayName(), sig.Filename, sig.Len()); err != nil {
			return err
		}
		for _, sketch := range sig.Sketches() {
			_, err := fmt.Fprintf(w, "\tk=%d molecule=%v %v seed=%d hash=%v abundance=%t single_strand=%t hashes=%d cardinality=%d md5=%v\n",
				sketch.KSize(),
				sketch.Molecule(),
				sketch.Size(),
				sketch.Seed(),
				sketch.Params().HashFunction,
				sketch.TrackAbundance(),
				sketch.Params().SingleStrand,
				sketch.Len(),
				sketch.Cardinality(),
				sketch.MD5(),
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
