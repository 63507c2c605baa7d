package pipeline

import (
	"log"
	"sync"

	"github.com/will-rowe/smash/src/signature"
)

// inputSource is a sequence file (or STDIN) waiting to be sketched
type inputSource struct {
	id   int // position of the source on the command line, used to order the output
	path string
}

// sketchResult holds the signatures a minion built from one input source
type sketchResult struct {
	source     *inputSource
	signatures []*signature.Signature
	records    int
	err        error
}

// theBoss is used to orchestrate the minions
type theBoss struct {
	info           *Info              // the runtime info for the pipeline
	minionRegister []*sketchMinion    // used to keep a record of the sketching minions
	sources        chan *inputSource  // the boss uses this channel to receive input sources from the main pipeline
	results        chan *sketchResult // the minions send their finished signatures here
	sourceCount    int                // the number of input sources the minions were sent
	recordCount    int                // the number of records sketched across all sources
	failedCount    int                // the number of input sources that could not be sketched
	sync.Mutex                        // allows sketching minions to update the Boss's counts
}

// newBoss will initialise and return theBoss
func newBoss(runtimeInfo *Info, inputChan chan *inputSource, outputChan chan *sketchResult) *theBoss {
	return &theBoss{
		info:    runtimeInfo,
		sources: inputChan,
		results: outputChan,
	}
}

// sketchSources is a method to start off the minions and wait for every input source to be sketched
func (theBoss *theBoss) sketchSources() {
	var wg sync.WaitGroup
	numMinions := theBoss.info.NumProc
	if numMinions < 1 {
		numMinions = 1
	}
	theBoss.minionRegister = make([]*sketchMinion, numMinions)
	for i := 0; i < numMinions; i++ {
		minion := newSketchMinion(i, theBoss)
		wg.Add(1)
		minion.start(&wg)
		theBoss.minionRegister[i] = minion
	}
	log.Printf("\tsketching workers: %d", numMinions)
	wg.Wait()
}
