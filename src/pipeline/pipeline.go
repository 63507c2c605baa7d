// Package pipeline contains the concurrent sketching pipeline, a streaming implementation based on the Gopher Academy article by S. Lampa - Patterns for composable concurrent pipelines in Go (https://blog.gopheracademy.com/advent-2015/composable-pipelines-improvements/)
//
// Input sources are streamed to a pool of sketching minions, each of which owns the signatures it builds, and the
// finished signatures are gathered by a collector once every source has been sketched.
package pipeline

// BUFFERSIZE is the size of the buffer used by the pipeline channels
const BUFFERSIZE int = 64

// process is the interface used by pipeline
type process interface {
	Run()
}

// Pipeline is the base type, which takes any types that satisfy the process interface
type Pipeline struct {
	processes []process
}

// NewPipeline is the pipeline constructor
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AddProcesses is a method to add processes to the pipeline, in the order that data flows through them
func (pl *Pipeline) AddProcesses(procs ...process) {
	pl.processes = append(pl.processes, procs...)
}

// Run is a method that starts the pipeline and returns once the final process has finished
func (pl *Pipeline) Run() {
	// every process but the last runs in its own go routine, the last runs in the foreground to control the flow
	for i, proc := range pl.processes {
		if i < len(pl.processes)-1 {
			go proc.Run()
		} else {
			proc.Run()
		}
	}
}

// GetNumProcesses is a method to return the number of processes registered in a pipeline
func (pl *Pipeline) GetNumProcesses() int {
	return len(pl.processes)
}
