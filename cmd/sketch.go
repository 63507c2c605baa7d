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
	"github.com/will-rowe/smash/src/pipeline"
	"github.com/will-rowe/smash/src/seqio"
	"github.com/will-rowe/smash/src/signature"
	"github.com/will-rowe/smash/src/version"
)

// the command line arguments
var (
	kSizes         *[]uint   // k-mer sizes to sketch
	molecules      *[]string // molecule types to sketch
	num            *uint64   // number of hashes to keep in bottom-n sketches
	scaled         *uint64   // scaling factor for FracMinHash sketches
	seed           *uint32   // seed for the hash function
	trackAbundance *bool     // record k-mer abundances
	singleStrand   *bool     // don't canonicalise k-mers
	hashFunction   *string   // the k-mer hash function
	inputIsProtein *bool     // input records are amino acids
	force          *bool     // skip invalid k-mers rather than rejecting records
	singleton      *bool     // one signature per record
	mergeName      *string   // merge all signatures into one with this name
	progress       *bool     // show a progress bar
	sketchOut      *string   // file to write the signatures to
)

// the sketch command (used by cobra)
var sketchCmd = &cobra.Command{
	Use:   "sketch [flags] [sequence files]",
	Short: "Build signatures from FASTA, FASTQ, SAM or BAM files (or STDIN)",
	Long: `Build signatures from FASTA, FASTQ, SAM or BAM files (or STDIN).

By default one signature is built for each input file, containing a sketch for each
combination of k-mer size and molecule type.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSketch(cmd, args)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	kSizes = sketchCmd.Flags().UintSliceP("kmerSizes", "k", signature.DefaultKSizes, "k-mer size(s) to sketch, in amino acids for translated molecule types")
	molecules = sketchCmd.Flags().StringSliceP("molecule", "m", []string{"DNA"}, "molecule type(s) to sketch (DNA, protein, dayhoff, hp)")
	num = sketchCmd.Flags().Uint64P("num", "n", signature.DefaultNum, "number of hashes to keep in each sketch (bottom-n MinHash)")
	scaled = sketchCmd.Flags().Uint64P("scaled", "s", 0, "keep hashes below 2^64/scaled (FracMinHash), replaces --num")
	seed = sketchCmd.Flags().Uint32("seed", minhash.DefaultSeed, "seed for the hash function")
	trackAbundance = sketchCmd.Flags().BoolP("trackAbundance", "a", false, "record the abundance of each hash")
	singleStrand = sketchCmd.Flags().Bool("singleStrand", false, "don't canonicalise k-mers (and only translate forward frames)")
	hashFunction = sketchCmd.Flags().String("hashFunction", minhash.Murmur64.String(), "hash function (murmur64 or nthash)")
	inputIsProtein = sketchCmd.Flags().Bool("inputIsProtein", false, "the input records are amino acid sequences")
	force = sketchCmd.Flags().BoolP("force", "f", false, "skip k-mers with invalid symbols rather than rejecting the input")
	singleton = sketchCmd.Flags().Bool("singleton", false, "build a signature for each record instead of each input file")
	mergeName = sketchCmd.Flags().String("merge", "", "merge all the signatures into one with this name")
	progress = sketchCmd.Flags().Bool("progress", false, "show a progress bar")
	sketchOut = sketchCmd.Flags().StringP("outFile", "o", "smash.sig", "file to write the signatures to (.sig, .json or .msgpack, optionally .gz), - for STDOUT")
	RootCmd.AddCommand(sketchCmd)
}

// sketchParamCheck builds the parameter set from the command line
func sketchParamCheck(cmd *cobra.Command, inputs []string) (*signature.ParameterSet, error) {
	if err := misc.CheckInputs(inputs, seqio.Extensions()); err != nil {
		return nil, err
	}
	opts := signature.Options{
		KSizes:         *kSizes,
		Num:            *num,
		Scaled:         *scaled,
		Seed:           *seed,
		TrackAbundance: *trackAbundance,
		SingleStrand:   *singleStrand,
		InputIsProtein: *inputIsProtein,
	}

	// --scaled replaces the default --num, but both can't be set by the user
	if *scaled != 0 {
		if cmd.Flags().Changed("num") {
			return nil, fmt.Errorf("--num and --scaled are mutually exclusive")
		}
		opts.Num = 0
	}
	var err error
	if opts.Molecules, err = parseMolecules(*molecules); err != nil {
		return nil, err
	}
	if opts.HashFunction, err = minhash.ParseHashFunction(*hashFunction); err != nil {
		return nil, err
	}
	return signature.NewParameterSet(opts)
}

// runSketch is the main function for the sketch sub-command
func runSketch(cmd *cobra.Command, inputs []string) {
	defer startSubcommand("sketch")()
	start := time.Now()

	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	ps, err := sketchParamCheck(cmd, inputs)
	misc.ErrorCheck(err)
	info := &pipeline.Info{
		Version:   version.GetVersion(),
		NumProc:   *proc,
		Profiling: *profiling,
		Progress:  *progress,
		Params:    ps,
		Sketch: pipeline.SketchCmd{
			Force:     *force,
			Singleton: *singleton,
			MergeName: *mergeName,
		},
	}
	misc.ErrorCheck(info.Check())
	log.Printf("\tprocessors: %d", info.NumProc)
	for _, p := range ps.Params() {
		log.Printf("\tsketch: k=%d, %v, %v, seed=%d", p.KSize, p.Molecule, p.Size, p.Seed)
	}
	if len(inputs) == 0 {
		log.Printf("\tinput: using STDIN")
	} else {
		log.Printf("\tnumber of input files: %d", len(inputs))
	}

	// create the pipeline
	log.Printf("initialising sketching pipeline...")
	sketchingPipeline := pipeline.NewPipeline()

	// initialise processes
	log.Printf("\tinitialising the processes")
	inputStreamer := pipeline.NewInputStreamer(info)
	sketcher := pipeline.NewSketcher(info)
	collector := pipeline.NewSignatureCollector(info)

	// connect the pipeline processes
	log.Printf("\tconnecting data streams")
	inputStreamer.Connect(inputs)
	sketcher.Connect(inputStreamer)
	collector.Connect(sketcher)

	// submit each process to the pipeline and run it
	sketchingPipeline.AddProcesses(inputStreamer, sketcher, collector)
	log.Printf("\tnumber of processes added to the sketching pipeline: %d\n", sketchingPipeline.GetNumProcesses())
	sketchingPipeline.Run()
	misc.ErrorCheck(collector.Err())
	sigs := collector.CollectOutput()
	if len(sigs) == 0 {
		misc.ErrorCheck(fmt.Errorf("no signatures could be built from the input"))
	}

	log.Printf("saving signatures...")
	misc.ErrorCheck(saveSignatures(*sketchOut, sigs))
	if *profiling {
		log.Printf("\tmemory: %v", misc.PrintMemUsage())
	}
	log.Printf("finished in %s", time.Since(start))
}
