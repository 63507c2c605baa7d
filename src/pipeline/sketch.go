package pipeline

/*
 this part of the pipeline will stream input sources, sketch them into signatures and collect the signatures
*/

import (
	"fmt"
	"log"
	"sort"

	"github.com/cheggaaa/pb/v3"

	"github.com/will-rowe/smash/src/signature"
)

// InputStreamer is a pipeline process that streams input sources to the sketcher
type InputStreamer struct {
	info   *Info
	input  []string
	output chan *inputSource
}

// NewInputStreamer is the constructor
func NewInputStreamer(info *Info) *InputStreamer {
	return &InputStreamer{info: info, output: make(chan *inputSource, BUFFERSIZE)}
}

// Connect is the method to connect the InputStreamer to some data source, STDIN is used if no files are given
func (proc *InputStreamer) Connect(input []string) {
	proc.input = input
	if len(proc.input) == 0 {
		proc.input = []string{"-"}
	}
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *InputStreamer) Run() {
	defer close(proc.output)
	for i, path := range proc.input {
		proc.output <- &inputSource{id: i, path: path}
	}
}

// Sketcher is a pipeline process that runs the sketching minions over each input source
type Sketcher struct {
	info       *Info
	input      chan *inputSource
	output     chan *sketchResult
	numSources int
	stats      [3]int // corresponds to num. sources, num. records, num. failed sources
}

// NewSketcher is the constructor
func NewSketcher(info *Info) *Sketcher {
	return &Sketcher{info: info, output: make(chan *sketchResult, BUFFERSIZE)}
}

// Connect is the method to join the input of this process with the output of an InputStreamer
func (proc *Sketcher) Connect(previous *InputStreamer) {
	proc.input = previous.output
	proc.numSources = len(previous.input)
}

// CollectStats is a method to return the number of input sources, records sketched and sources that failed
func (proc *Sketcher) CollectStats() [3]int {
	return proc.stats
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *Sketcher) Run() {
	defer close(proc.output)
	log.Printf("now sketching...")
	theBoss := newBoss(proc.info, proc.input, proc.output)
	theBoss.sketchSources()
	proc.stats = [3]int{theBoss.sourceCount, theBoss.recordCount, theBoss.failedCount}
	log.Printf("\tnumber of input sources: %d", theBoss.sourceCount)
	log.Printf("\tnumber of records sketched: %d", theBoss.recordCount)
	if theBoss.failedCount != 0 {
		log.Printf("\tnumber of input sources that failed: %d", theBoss.failedCount)
	}
}

// SignatureCollector is a pipeline process that gathers the signatures, in input order, and optionally merges them
type SignatureCollector struct {
	info       *Info
	input      chan *sketchResult
	numSources int
	signatures []*signature.Signature
	failures   []error
	err        error
}

// NewSignatureCollector is the constructor
func NewSignatureCollector(info *Info) *SignatureCollector {
	return &SignatureCollector{info: info}
}

// Connect is the method to join the input of this process with the output of a Sketcher
func (proc *SignatureCollector) Connect(previous *Sketcher) {
	proc.input = previous.output
	proc.numSources = previous.numSources
}

// CollectOutput is a method to return the signatures
func (proc *SignatureCollector) CollectOutput() []*signature.Signature {
	return proc.signatures
}

// CollectFailures is a method to return the errors of any input sources that couldn't be sketched
func (proc *SignatureCollector) CollectFailures() []error {
	return proc.failures
}

// Err returns any error raised while merging the signatures
func (proc *SignatureCollector) Err() error {
	return proc.err
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *SignatureCollector) Run() {
	var bar *pb.ProgressBar
	if proc.info.Progress {
		bar = pb.StartNew(proc.numSources)
	}
	results := []*sketchResult{}
	for result := range proc.input {
		if bar != nil {
			bar.Increment()
		}
		if result.err != nil {
			log.Printf("\tskipping %v: %v", result.source.path, result.err)
			proc.failures = append(proc.failures, fmt.Errorf("%v: %w", result.source.path, result.err))
			continue
		}
		results = append(results, result)
	}
	if bar != nil {
		bar.Finish()
	}

	// minions finish in any order, so put the signatures back in input order
	sort.Slice(results, func(i, j int) bool { return results[i].source.id < results[j].source.id })
	for _, result := range results {
		proc.signatures = append(proc.signatures, result.signatures...)
	}
	log.Printf("\tnumber of signatures collected: %d", len(proc.signatures))
	if proc.info.Sketch.MergeName == "" || len(proc.signatures) == 0 {
		return
	}

	// merge into a single signature
	merged := proc.signatures[0].Clone()
	for _, sig := range proc.signatures[1:] {
		if err := merged.Merge(sig, false); err != nil {
			proc.err = fmt.Errorf("could not merge %v: %w", sig.DisplayName(), err)
			return
		}
	}
	merged.Name = proc.info.Sketch.MergeName
	merged.Filename = ""
	proc.signatures = []*signature.Signature{merged}
	log.Printf("\tmerged signatures into: %v", merged.Name)
}
