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

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/will-rowe/smash/src/alphabet"
	"github.com/will-rowe/smash/src/misc"
	"github.com/will-rowe/smash/src/signature"
	"github.com/will-rowe/smash/src/version"
)

// the command line arguments
var (
	proc      *int    // number of processors to use
	profiling *bool   // create profile for go pprof
	logFile   *string // filename for log file, STDERR is used if not set
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "smash",
	Short: "build and compare MinHash sketches of DNA and protein sequence collections",
	Long: `
#####################################################################################
		SMASH: Sequence MinHash And Sketch Handling
#####################################################################################

 SMASH builds compact MinHash and FracMinHash sketches of sequence collections.

 Sketches of the canonical k-mers (or translated k-mers) in FASTA, FASTQ, SAM or BAM
 input are grouped into signatures, which can be saved, merged, downsampled and
 compared to estimate Jaccard similarity and containment between datasets.`,
	Version: version.GetVersion(),
}

/*
  A function to add all child commands to the root command and sets flags appropriately
*/
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

/*
  A function to initalise the command line arguments
*/
func init() {
	proc = RootCmd.PersistentFlags().IntP("processors", "p", 1, "number of processors to use")
	profiling = RootCmd.PersistentFlags().Bool("profiling", false, "create the files needed to profile smash using the go tool pprof")
	logFile = RootCmd.PersistentFlags().String("log", "", "filename for log file, default = STDERR")
}

// startSubcommand sets up the logging and profiling shared by every subcommand, the returned func must be deferred
func startSubcommand(name string) func() {
	stops := []func(){}
	if *profiling {
		stops = append(stops, profile.Start(profile.ProfilePath("./")).Stop)
	}
	if *logFile != "" {
		logFH, err := misc.StartLogging(*logFile)
		misc.ErrorCheck(err)
		log.SetOutput(logFH)
		stops = append(stops, func() { logFH.Close() })
	}
	*proc = misc.SetProcessors(*proc)
	log.Printf("smash (version %s)", version.GetVersion())
	log.Printf("starting the %v subcommand", name)
	return func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}
}

// loadSignatures reads every signature from the supplied files
func loadSignatures(files []string) ([]*signature.Signature, error) {
	sigs := []*signature.Signature{}
	for _, file := range files {
		if err := misc.CheckFile(file); err != nil {
			return nil, err
		}
		loaded, err := signature.LoadFile(file)
		if err != nil {
			return nil, err
		}
		log.Printf("\tloaded %d signature(s) from %v", len(loaded), file)
		sigs = append(sigs, loaded...)
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("no signatures found in the input files")
	}
	return sigs, nil
}

// saveSignatures writes signatures to a file, or to STDOUT as JSON if the filename is "-"
func saveSignatures(outFile string, sigs []*signature.Signature) error {
	if outFile == "-" {
		return signature.Save(os.Stdout, signature.JSON, sigs...)
	}
	if err := signature.SaveFile(outFile, sigs...); err != nil {
		return err
	}
	log.Printf("\tsaved %d signature(s) to %v", len(sigs), outFile)
	return nil
}

// parseMolecules converts the molecule names given on the command line
func parseMolecules(names []string) ([]alphabet.Molecule, error) {
	molecules := make([]alphabet.Molecule, 0, len(names))
	for _, name := range names {
		molecule, err := alphabet.ParseMolecule(name)
		if err != nil {
			return nil, err
		}
		molecules = append(molecules, molecule)
	}
	return molecules, nil
}
